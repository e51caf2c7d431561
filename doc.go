// Package freeboost keeps placing free boost orders for every service of a
// social platform, one worker per service, honouring the cooldowns the boost
// API hands back.
//
// # Quick Start
//
// Load the platform catalog, describe the target and run until interrupted:
//
//	client, _ := remote.NewClient(siteURL, remote.DefaultHeaders(siteURL))
//	cfg, _, err := catalog.NewLoader(client, catalog.LoaderConfig{URL: configURL}).Load(ctx)
//	if err != nil {
//	    return err
//	}
//
//	b, err := freeboost.New(
//	    freeboost.WithCatalog(catalog.NewCatalog(cfg)),
//	    freeboost.WithClient(client),
//	    freeboost.WithTarget(freeboost.Target{
//	        Platform:      "tiktok",
//	        PrimaryLink:   "https://www.tiktok.com/@someone",
//	        SecondaryLink: "https://www.tiktok.com/@someone/video/7351234567890123456",
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	b.Run(ctx) // blocks until ctx is cancelled
//
// # Errors
//
// [New] rejects a target that can never succeed: an unknown platform
// ([ErrUnknownPlatform]), an empty primary link ([ErrMissingLink]) or a video
// link whose content id cannot be extracted ([ErrContentID]). Failures while
// running are per-iteration and only ever delay the affected worker.
//
// # Architecture
//
// The internal packages are:
//
//   - internal/remote: shared HTTP session with cookie warm-up
//   - internal/catalog: platform configuration, its loader and local cache
//   - internal/resolver: content id extraction from links
//   - internal/worker: the per-service order loop and the pool running them
//   - internal/store: latest status per worker with pub/sub
//   - internal/server: optional JSON and SSE status API
//   - internal/output: terminal rendering for the CLI
package freeboost
