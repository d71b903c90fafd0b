// Package main provides officectl, the CLI for the office attendance server.
//
// The server is a REST backend for office management: it authenticates users
// with Basic credentials and JWT token pairs, authorizes requests against
// per-user permission codes, and tracks daily work sessions (clock-in and
// clock-out) per user.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/server/middleware: identity and permission guard pipeline
//   - pkg/auth: credential hashing and Basic decoding
//   - pkg/auth/token: JWT issuance and verification
//   - pkg/auth/permission: permission-code evaluation
//   - pkg/attendance: work-session state machine
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/audit: audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
//	# Generate a token signing key
//	openssl rand -base64 32 > token_key
//	export OFFICE_TOKEN_KEY=$(cat token_key)
//
//	# Run database migrations
//	officectl db migrate
//
//	# Create a user with the baseline permissions
//	officectl user create alice --display-name Alice --grant LOGIN001,A0000003
//
//	# Start the server
//	officectl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - OFFICE_TOKEN_KEY: Base64-encoded key for signing tokens
//   - OFFICE_CONFIG_PATH: Directory containing office.yml (default: /etc/office/config)
//   - OFFICE_LOG_LEVEL: Log level (debug enables SQL logging)
//   - OFFICE_AUDIT_ENABLED: Enable RFC 5424 audit output
//   - PORT: Server port (default: 8000)
package main
