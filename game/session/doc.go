// Package session provides session management for the Traska space race.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Expiry of idle sessions
//
// Sessions use 4-character hex IDs, matched case-insensitively. Each session
// owns its own engine; a seed passed at creation makes its maps reproducible.
// Sessions live only in memory and are gone when the process exits.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
