// Package bootstrap runs the lifecycle of a fetchkit program: it validates
// the typed config, installs the logger, starts registered components,
// runs hooks and shuts everything down in reverse order.
//
// CLI tools and batch jobs use RunTask, which runs one task and stops:
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(httpclient.NewComponent(cfg.Client))
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return call(ctx)
//	})
//
// Long-running programs use Run, which blocks until SIGINT, SIGTERM or
// context cancellation.
package bootstrap
