package endpoints

import (
	"github.com/ssshoffice/office-in-go/pkg/auth/permission"
	"github.com/ssshoffice/office-in-go/pkg/identity"
	"github.com/ssshoffice/office-in-go/pkg/server"
	"github.com/ssshoffice/office-in-go/pkg/server/middleware"
)

// routeRequirements is the explicit per-route access table the guard
// pipeline consults. Routes absent from the table require the baseline
// sentinel, so forgetting an entry locks a route down instead of opening it.
var routeRequirements = middleware.Requirements{
	"status": {Public: true},
	"health": {Public: true},

	"session.login":    {Public: true},
	"session.register": {Public: true},
	"session.refresh":  {Kind: identity.KindRefresh, KindOnly: true},

	"whoami": {Codes: []string{permission.CanUseOffice}},

	"work.list":      {Codes: []string{permission.CanUseWork}},
	"work.clock-in":  {Codes: []string{permission.CanUseWork}},
	"work.clock-out": {Codes: []string{permission.CanUseWork}},
	"work.delete":    {Codes: []string{permission.CanUseWork}},
	"work.today":     {Codes: []string{permission.ReadAnotherWork}},
}

// RegisterAll installs the guard pipeline and all API endpoints on the
// server. The identity stage is registered before the permission stage;
// gorilla/mux runs middleware in registration order.
func RegisterAll(srv *server.Server) {
	guard := middleware.NewGuard(srv.Tokens, srv.Codec, routeRequirements)
	srv.Router.Use(guard.Identity)
	srv.Router.Use(guard.Permission)

	RegisterSessionEndpoints(srv)
	RegisterAttendanceEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterStatusEndpoints(srv)
}
