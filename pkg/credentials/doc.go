// Package credentials stores the bearer token used by the notification
// client between runs.
//
// SQLiteStore keeps one token per profile in a local SQLite database (pure
// Go driver, no cgo). MemoryStore is its in-process counterpart for tests
// and short-lived tools. Both implement notifyclient.CredentialStore and
// report a missing token with notifyclient.ErrNoCredential.
//
//	store, err := credentials.NewSQLiteStore(cfg.Path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.SetToken(ctx, token)
//	client := notifyclient.New(notifyclient.WithCredentials(store))
package credentials
