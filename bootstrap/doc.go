// Package bootstrap wires a dagpipe process together.
//
// NewApp applies config defaults, validates, initializes the logger and
// builds a file loader over engine.definition_dirs. Start brings up the
// OTLP tracer and meter when enabled. Pipelines built through Load or Build
// inherit the engine config, the app logger and run metrics.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.Registry.Register(parse, store)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    p, err := app.Load("ingest")
//	    if err != nil {
//	        return err
//	    }
//	    _, err = p.Run(ctx, "input.csv")
//	    return err
//	})
package bootstrap
