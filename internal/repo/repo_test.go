package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"community-events/internal/core/database/dbtest"
	"community-events/internal/domain"
)

func strp(s string) *string { return &s }

func seed(t *testing.T) (*Repos, context.Context) {
	t.Helper()
	r := New(dbtest.Open(t))
	ctx := context.Background()
	for _, u := range []domain.User{
		{ID: "u1", Name: "Ada", Email: strp("ada@x.dev"), Role: domain.RoleAdmin},
		{ID: "u2", Name: "Bob", Email: strp("bob@x.dev"), Role: domain.RoleUser},
		{ID: "u3", Name: "Cy", Role: domain.RoleUser},
	} {
		u := u
		if err := r.Users.Create(ctx, &u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	ev := domain.Event{ID: "e1", Name: "Go", Image: "/images/a.png", Date: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC), Duration: 2, Type: domain.EventWorkshop}
	if err := r.Events.Create(ctx, &ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return r, ctx
}

func TestUserRepo_FindReturnsNilWhenMissing(t *testing.T) {
	r, ctx := seed(t)
	u, err := r.Users.FindByEmail(ctx, "nobody@x.dev")
	if err != nil || u != nil {
		t.Fatalf("got %v, %v", u, err)
	}
	u, err = r.Users.FindByID(ctx, "u2")
	if err != nil || u == nil || u.Name != "Bob" {
		t.Fatalf("got %v, %v", u, err)
	}
}

func TestUserRepo_ListSearchAndRoles(t *testing.T) {
	r, ctx := seed(t)
	us, total, err := r.Users.List(ctx, 0, 10, "bob")
	if err != nil || total != 1 || len(us) != 1 || us[0].ID != "u2" {
		t.Fatalf("search: %v %d %v", us, total, err)
	}
	admins, err := r.Users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil || len(admins) != 1 || admins[0].ID != "u1" {
		t.Fatalf("admins: %v %v", admins, err)
	}
	n, err := r.Users.SetRole(ctx, "u2", domain.RoleAdmin)
	if err != nil || n != 1 {
		t.Fatalf("set role: %d %v", n, err)
	}
	found, _ := r.Users.FindByEmails(ctx, []string{"ada@x.dev", "bob@x.dev", "ghost@x.dev"})
	if len(found) != 2 {
		t.Fatalf("find by emails = %d", len(found))
	}
}

func TestEventRepo_GuardedTransitions(t *testing.T) {
	r, ctx := seed(t)

	if n, _ := r.Events.MarkDone(ctx, "e1"); n != 0 {
		t.Fatal("inactive event must not be marked done")
	}
	if n, _ := r.Events.Activate(ctx, "e1"); n != 1 {
		t.Fatal("activate")
	}
	if n, _ := r.Events.Activate(ctx, "e1"); n != 0 {
		t.Fatal("second activate must affect nothing")
	}
	if n, _ := r.Events.MarkDone(ctx, "e1"); n != 1 {
		t.Fatal("mark done")
	}
	if n, _ := r.Events.MarkDone(ctx, "e1"); n != 0 {
		t.Fatal("second mark done must affect nothing")
	}
	e, _ := r.Events.FindByID(ctx, "e1")
	if !e.Active || !e.Done {
		t.Fatalf("state = %+v", e)
	}
}

func TestParticipantRepo_PageWithCertificates(t *testing.T) {
	r, ctx := seed(t)
	base := time.Now()
	for i, uid := range []string{"u2", "u3", "u1"} {
		p := domain.Participant{EventID: "e1", UserID: uid, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := r.Participants.Create(ctx, &p); err != nil {
			t.Fatalf("register %s: %v", uid, err)
		}
	}
	dup := domain.Participant{EventID: "e1", UserID: "u2"}
	if err := r.Participants.Create(ctx, &dup); !IsDupKey(err) {
		t.Fatalf("duplicate participant err = %v", err)
	}

	if err := r.Certificates.CreateBatch(ctx, []domain.Certificate{{ID: "c1", EventID: "e1", UserID: "u3"}}); err != nil {
		t.Fatal(err)
	}
	missing, err := r.Participants.WithoutCertificate(ctx, "e1")
	if err != nil || len(missing) != 2 || missing[0] != "u2" || missing[1] != "u1" {
		t.Fatalf("without certificate = %v, %v", missing, err)
	}

	rows, total, err := r.Participants.Page(ctx, "e1", 0, 2)
	if err != nil || total != 3 || len(rows) != 2 {
		t.Fatalf("page: %v %d %v", rows, total, err)
	}
	if rows[0].User.ID != "u2" || rows[0].Certificate != nil {
		t.Fatalf("row0 = %+v", rows[0])
	}
	if rows[1].User.ID != "u3" || rows[1].Certificate == nil || *rows[1].Certificate != "c1" {
		t.Fatalf("row1 = %+v", rows[1])
	}

	counts, _ := r.Participants.CountByEvents(ctx, []string{"e1", "missing"})
	if counts["e1"] != 3 || counts["missing"] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestCertificateRepo_UniquePerEventUser(t *testing.T) {
	r, ctx := seed(t)
	if err := r.Certificates.CreateBatch(ctx, []domain.Certificate{{ID: "c1", EventID: "e1", UserID: "u2"}}); err != nil {
		t.Fatal(err)
	}
	err := r.Certificates.CreateBatch(ctx, []domain.Certificate{{ID: "c2", EventID: "e1", UserID: "u2"}})
	if !IsDupKey(err) {
		t.Fatalf("duplicate certificate err = %v", err)
	}
	c, err := r.Certificates.FindByID(ctx, "c1")
	if err != nil || c == nil || c.User.Name != "Bob" || c.Event.Name != "Go" {
		t.Fatalf("preload: %+v %v", c, err)
	}
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	r, ctx := seed(t)
	boom := errors.New("boom")
	err := r.Transaction(ctx, func(tx *Repos) error {
		if err := tx.Presenters.Add(ctx, "e1", []string{"u1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	ps, _ := r.Presenters.ByEvent(ctx, "e1")
	if len(ps) != 0 {
		t.Fatalf("presenters survived rollback: %v", ps)
	}
}
