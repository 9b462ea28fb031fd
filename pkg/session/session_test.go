package session

import (
	"testing"
)

func TestSessionManager(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	account := "testuser"

	t.Run("CreateAndLoad", func(t *testing.T) {
		mgr, err := NewManager(account)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		sess, err := mgr.Create(account, []string{"tweets", "likes"}, 20)
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if sess.Account != account {
			t.Errorf("expected account %s, got %s", account, sess.Account)
		}
		if sess.ScrollBudget != 20 {
			t.Errorf("expected scroll budget 20, got %d", sess.ScrollBudget)
		}

		loaded, err := mgr.Load()
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if loaded == nil {
			t.Fatal("expected session, got nil")
		}
		if len(loaded.PendingScopes) != 2 || loaded.PendingScopes[0] != "tweets" {
			t.Errorf("unexpected pending scopes: %v", loaded.PendingScopes)
		}
	})

	t.Run("ScopeProgress", func(t *testing.T) {
		mgr, err := NewManager(account)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		sess, err := mgr.Create(account, []string{"tweets", "likes"}, 0)
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if err := mgr.BeginScope(sess, "tweets", []string{"likes"}); err != nil {
			t.Fatalf("BeginScope failed: %v", err)
		}
		if err := mgr.CompleteScope(sess, "tweets", 42); err != nil {
			t.Fatalf("CompleteScope failed: %v", err)
		}
		if err := mgr.SetIdentity(sess, "alice"); err != nil {
			t.Fatalf("SetIdentity failed: %v", err)
		}

		loaded, err := mgr.Load()
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if loaded.Flushed["tweets"] != 42 {
			t.Errorf("expected 42 flushed records for tweets, got %d", loaded.Flushed["tweets"])
		}
		if loaded.CurrentScope != "" {
			t.Errorf("expected cleared current scope, got %s", loaded.CurrentScope)
		}
		if loaded.Identity != "alice" {
			t.Errorf("expected identity alice, got %s", loaded.Identity)
		}
		if len(loaded.PendingScopes) != 1 || loaded.PendingScopes[0] != "likes" {
			t.Errorf("unexpected pending scopes: %v", loaded.PendingScopes)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		mgr, err := NewManager(account)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if _, err := mgr.Create(account, []string{"tweets"}, 0); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if !mgr.Exists() {
			t.Fatal("expected session to exist")
		}

		if err := mgr.Delete(); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if mgr.Exists() {
			t.Error("expected session to be gone")
		}

		loaded, err := mgr.Load()
		if err != nil {
			t.Fatalf("load after delete failed: %v", err)
		}
		if loaded != nil {
			t.Error("expected nil session after delete")
		}

		// Deleting twice is fine.
		if err := mgr.Delete(); err != nil {
			t.Errorf("second delete failed: %v", err)
		}
	})
}
