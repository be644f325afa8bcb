// Package crushsdk bootstraps a MediaCrush client from the environment.
// MEDIACRUSH_MODE selects "http" (talk to MEDIACRUSH_API_URL), "mock" (an
// in-memory server, optionally seeded from MEDIACRUSH_MOCK_SEED) or "auto",
// which picks http when an API URL is configured and mock otherwise. Both
// modes return the same *mediacrush.Client type.
package crushsdk
