// Package state persists a summary of the last pitch session so it can be
// inspected after the process exits.
//
// The summary is written to session.json in a configurable directory using
// an atomic write (temporary file plus rename).
//
//	repo := state.NewFileRepository(dir)
//	if err := repo.Save(ctx, summary); err != nil {
//	    logger.Error("failed to save session", log.Err(err))
//	}
package state
