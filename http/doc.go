// Package http serves the attachment gateway.
//
// A single endpoint at "/" accepts any method. OPTIONS requests are answered
// with CORS headers before authentication. Every other request must carry
// "Authorization: Bearer <token>", which is verified by an
// identity.Authenticator. The caller's storage configuration is then
// resolved, and the request content type selects the operation:
//
//   - multipart/form-data with fields "file" and "noteId" uploads the file
//     and responds with the attachment record
//   - anything else is decoded as JSON {"attachmentId": "..."} and deletes
//     that attachment, responding {"success": true}
//
// Failures are JSON {"error": "..."}; object store failures add "details"
// with the store's raw response. See HandleError for the status mapping.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{
//	    Authenticator: auth,
//	    Resolver:      prefs.NewResolver(db.Preferences()),
//	    CORS:          corsCfg,
//	    Health:        db,
//	    Metrics:       metrics.New(),
//	}
//	handler := http.NewHandler(&handlerCfg, service)
//	http.ListenAndServe(":8080", handler.Router())
//
// GET /healthz pings the HealthChecker and GET /metrics serves Prometheus
// metrics when a Metrics instance is configured. Neither requires a token.
package http
