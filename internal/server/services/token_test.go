package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/taskit/internal/common"
	"github.com/dmitrijs2005/taskit/internal/server/auth"
	"github.com/dmitrijs2005/taskit/internal/server/models"
)

func TestIssue_SignsAndPersists(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := newTokenService(db, rm)

	token, err := s.Issue(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
	if len(rm.st.added) != 1 || rm.st.added[0] != token {
		t.Fatalf("token not persisted: %+v", rm.st.added)
	}

	userID, err := auth.GetUserIDFromToken(token, []byte("k"))
	if err != nil || userID != "u-1" {
		t.Fatalf("issued token does not verify: (%q, %v)", userID, err)
	}
}

func TestIssue_PersistErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.st.addErr = errBoom{}
	s := newTokenService(db, rm)

	_, err := s.Issue(context.Background(), "u-1")
	if !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestValidate_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.u.byID["u-1"] = &models.User{ID: "u-1", Email: "alice@example.com"}
	s := newTokenService(db, rm)

	token, err := s.Issue(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	user, err := s.Validate(context.Background(), token)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if user.ID != "u-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestValidate_ForgedToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := newTokenService(db, rm)

	forged, err := auth.GenerateToken("u-1", []byte("other-secret"), 0)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := s.Validate(context.Background(), forged); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestValidate_DeletedAccount(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// No account in the repo: a well-signed token for a deleted account
	// must fail like a forged one.
	rm := newFakeRepoManager()
	s := newTokenService(db, rm)

	token, err := s.Issue(context.Background(), "u-gone")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := s.Validate(context.Background(), token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestValidate_RevokedToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.u.byID["u-1"] = &models.User{ID: "u-1"}
	rm.st.existsOut = false
	s := newTokenService(db, rm)

	token, err := s.Issue(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := s.Validate(context.Background(), token); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestValidate_StoreErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.u.byID["u-1"] = &models.User{ID: "u-1"}
	rm.st.existsErr = errBoom{}
	s := newTokenService(db, rm)

	token, _ := auth.GenerateToken("u-1", []byte("k"), 0)

	if _, err := s.Validate(context.Background(), token); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestRevoke_SingleSession(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := newTokenService(db, rm)

	if err := s.Revoke(context.Background(), "u-1", "tok-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if rm.st.deletedToken != "tok-1" {
		t.Fatalf("wrong token revoked: %q", rm.st.deletedToken)
	}

	rm.st.delErr = errBoom{}
	if err := s.Revoke(context.Background(), "u-1", "tok-1"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}

func TestRevokeAll_AllSessions(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	s := newTokenService(db, rm)

	if err := s.RevokeAll(context.Background(), "u-1"); err != nil {
		t.Fatalf("RevokeAll error: %v", err)
	}
	if rm.st.deletedAllID != "u-1" {
		t.Fatalf("wrong user: %q", rm.st.deletedAllID)
	}

	rm.st.delAllErr = errBoom{}
	if err := s.RevokeAll(context.Background(), "u-1"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want ErrorInternal, got %v", err)
	}
}
