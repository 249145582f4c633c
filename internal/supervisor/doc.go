// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

/*
Package supervisor runs the long-lived parts of the API server under a
suture v4 supervisor tree.

	yamdb
	├── background-layer
	│   ├── audit-logger       (audit.Logger)
	│   └── lockout-manager    (auth.LockoutManager)
	└── api-layer
	    └── http-server        (services.HTTPServerService)

Each layer counts failures on its own, so a crash in the audit store is
restarted with backoff while the HTTP server keeps serving. Supervisor
events are logged through sutureslog into the process slog logger.

Usage in main:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddBackgroundService(auditLogger)
	tree.AddBackgroundService(lockout)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

Cancelling the context stops every service; services that miss the
shutdown timeout are listed by UnstoppedServiceReport.
*/
package supervisor
