// Package auth persists the tier API token for a project.
//
// Each credential is keyed by the API host it was issued for and the project
// root it was issued in, so logging in from one checkout never authenticates
// another. The storage name is derived from both with BLAKE3; the record also
// carries the original host and root and is ignored if they do not match.
//
// Two backends implement KeyringProvider:
//   - FileProvider (default): one 0600 file per credential under
//     TIER_CREDENTIALS_DIR, or <user config dir>/tier/credentials
//   - the OS keyring via github.com/99designs/keyring, selected with
//     TIER_CREDENTIAL_STORE=keyring or the settings file
//
// Example usage:
//
//	store, err := auth.Open("", os.Getenv)
//	if err != nil {
//	    return err
//	}
//	key := auth.Key{APIHost: "api.tier.run", ProjectRoot: root}
//	if err := store.Put(key, auth.Record{Token: token, AuthType: "bearer"}); err != nil {
//	    return err
//	}
//	rec, err := store.Get(key) // rec == nil when not logged in
package auth
