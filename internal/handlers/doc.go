// Package handlers implements the HTTP API of the sync agent.
//
// The API stands in for the screen and buttons of a companion app: an
// external scanner posts scan results, a user or script picks a network and
// triggers a sync. Handlers validate requests, delegate to the services layer
// and map errors to HTTP status codes.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                     HTTP Request (Gin)                          │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request binding                                              │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion (api/v1)                             │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  ConnectionCoordinator │ NetworkService │ SyncService           │
//	└─────────────────────────────────────────────────────────────────┘
//
// # API Endpoints
//
// Connection (connection.go):
//
//	┌────────┬───────────────────────┬──────────────────────────────────────┐
//	│ Method │ Endpoint              │ Description                          │
//	├────────┼───────────────────────┼──────────────────────────────────────┤
//	│ GET    │ /connection           │ State, device id, sync enabled       │
//	│ POST   │ /connection           │ Request a connection to a device     │
//	│ POST   │ /connection/reconnect │ Reconnect to the last device         │
//	└────────┴───────────────────────┴──────────────────────────────────────┘
//
// Networks (networks.go):
//
//	┌────────┬───────────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint          │ Description                              │
//	├────────┼───────────────────┼──────────────────────────────────────────┤
//	│ POST   │ /networks/scan    │ Replace candidates with a scan result    │
//	│ GET    │ /networks/current │ Displayed network and stored secret      │
//	│ POST   │ /networks/next    │ Show the next candidate                  │
//	│ GET    │ /credentials      │ Known network ids, never secrets         │
//	└────────┴───────────────────┴──────────────────────────────────────────┘
//
// Sync (sync.go):
//
//	┌────────┬──────────┬─────────────────────────────────────────────────┐
//	│ Method │ Endpoint │ Description                                     │
//	├────────┼──────────┼─────────────────────────────────────────────────┤
//	│ POST   │ /sync    │ Send the UI snapshot to the device              │
//	│ GET    │ /sync    │ Sync history, newest first (?limit=N)           │
//	└────────┴──────────┴─────────────────────────────────────────────────┘
//
// # Error Handling
//
//	┌─────────────────────────┬────────┐
//	│ Error                   │ Status │
//	├─────────────────────────┼────────┤
//	│ ValidationError         │ 400    │
//	│ ResourceNotFoundError   │ 404    │
//	│ InvalidStateError       │ 409    │
//	│ failed send (in result) │ 502    │
//	│ anything else           │ 500    │
//	└─────────────────────────┴────────┘
//
// Malformed request bodies answer 400 before reaching a service.
package handlers
