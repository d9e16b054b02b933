// Package azure provides the Microsoft.Quota API client and the
// credential provider.
//
// This package queries the management-plane usages and quotas
// endpoints for one subscription/provider/region triple per call and
// parses the results into the domain records consumed by the
// reconciler. It handles:
//   - Authentication using Azure Default Credentials
//   - Bearer-token GET requests against both Microsoft.Quota endpoints
//   - Typed response parsing that fails fast on missing fields
//   - Per-request timeout handling
//
// Requests are made exactly once; there is no retry, pagination or
// caching layer. A non-200 status or a response that does not match
// the expected shape is returned as an error and ends the scan.
//
// The main types are:
//   - Credential: bearer token source for the management endpoint
//   - Client: usages/quotas API client
//   - HTTPClient: transport interface, substituted in tests
//
// Example usage:
//
//	cfg, _ := config.Load("config.yaml")
//	log := logger.New(cfg.LogLevel, cfg.LogFormat)
//
//	cred, err := azure.NewCredential(cfg)
//	if err != nil {
//		log.Error("credential setup failed", "error", err)
//		os.Exit(1)
//	}
//
//	token, err := cred.Token(ctx)
//	if err != nil {
//		log.Error("token acquisition failed", "error", err)
//		os.Exit(1)
//	}
//
//	client := azure.NewClient(cfg, log)
//	usages, err := client.Usages(ctx, token, "sub-123", "Microsoft.Storage", "eastus")
//	if err != nil {
//		log.Error("usage query failed", "error", err)
//		os.Exit(1)
//	}
//
//	for _, u := range usages {
//		fmt.Printf("%s: %v\n", u.Name, u.CurrentValue)
//	}
package azure
