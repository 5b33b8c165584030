// Package elysium composes the framework packages into one application.
//
// New builds a chi router with request IDs, request logging, panic
// recovery, CORS and the environment in context, mounts the health
// endpoints, registers the routes directory through the auto router and
// prepares the cron scheduler and, when JWT_SECRET is set, the token
// service. Run starts everything and blocks until shutdown.
//
//	cfg, env, err := elysium.LoadConfig(".")
//	if err != nil {
//		log.Fatal(err)
//	}
//	app, err := elysium.New(cfg,
//		elysium.WithEnv(env),
//		elysium.WithManifest(manifest),
//		elysium.WithTask("cleanup", "0 3 * * *", cleanup),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer app.Close()
//	if err := app.Run(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// Unmatched routes answer with the NotFound envelope and wrong verbs with
// BadRequest.
package elysium
