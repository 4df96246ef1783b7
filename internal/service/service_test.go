package service

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"sternwerk/internal/database"
	"sternwerk/internal/models"
	"sternwerk/internal/repository"
)

const testMigrationsPath = "../../migrations"

// testEnv wires every service over a throwaway SQLite database
type testEnv struct {
	db       *database.DB
	children *ChildService
	ledger   *LedgerService
	tasks    *TaskService
	notes    *NoteService
	wishes   *WishService
	events   *EventService
	logs     *DebugLogService
	auth     *AuthService
	pairing  *ChildAuthService
	settings *repository.SettingsRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(testMigrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	childRepo := repository.NewChildRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	wishRepo := repository.NewWishRepository(db)
	eventRepo := repository.NewEventRepository(db)
	logRepo := repository.NewDebugLogRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	userRepo := repository.NewUserRepository(db)
	pairingRepo := repository.NewPairingRepository(db)

	emails, err := NewEmailService("", "", "", "")
	if err != nil {
		t.Fatalf("failed to create email service: %v", err)
	}

	logs := NewDebugLogService(logRepo, 500)
	ledger := NewLedgerService(db, childRepo, ledgerRepo)

	return &testEnv{
		db:       db,
		children: NewChildService(childRepo, taskRepo, wishRepo),
		ledger:   ledger,
		tasks:    NewTaskService(db, taskRepo, childRepo, ledger, logs),
		notes:    NewNoteService(db, noteRepo, childRepo, ledger, logs),
		wishes:   NewWishService(db, wishRepo, settingsRepo, userRepo, ledger, emails, logs),
		events:   NewEventService(eventRepo),
		logs:     logs,
		auth:     NewAuthService(userRepo, emails, time.Hour),
		pairing:  NewChildAuthService(pairingRepo, childRepo, "test-secret", time.Hour, 15*time.Minute),
		settings: settingsRepo,
	}
}

func (env *testEnv) mustCreateChild(t *testing.T, name string) *models.Child {
	t.Helper()
	child, err := env.children.CreateChild(name, "fox", 2)
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}
	return child
}

func TestLedgerCreditAndDebit(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	_, balance, err := env.ledger.Credit(child.ID, 10, "Bonus", models.SourceBonus, "")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if balance != 10 {
		t.Errorf("expected balance 10, got %d", balance)
	}

	_, balance, err = env.ledger.Debit(child.ID, 4, "Kleiner Wunsch", models.SourceManual, "")
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if balance != 6 {
		t.Errorf("expected balance 6, got %d", balance)
	}

	got, err := env.ledger.GetBalance(child.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if got != 6 {
		t.Errorf("stored balance = %d, want 6", got)
	}
}

func TestLedgerClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.Credit(child.ID, 3, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	entry, balance, err := env.ledger.Debit(child.ID, 10, "Zu teuer", models.SourceManual, "")
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected clamped balance 0, got %d", balance)
	}
	if entry.Amount != -10 {
		t.Errorf("journal should record the requested delta, got %d", entry.Amount)
	}

	// The journal keeps the requested amounts, so its sum can run below the
	// clamped balance.
	entries, err := env.ledger.ListEntries(child.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(entries))
	}
	sum := 0
	for _, e := range entries {
		sum += e.Amount
	}
	if sum != -7 {
		t.Errorf("journal sum = %d, want -7", sum)
	}
}

func TestLedgerRejectsZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.ApplyDelta(child.ID, 0, "Nichts", models.SourceManual, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, _, err := env.ledger.Credit(child.ID, -5, "Falsch", models.SourceManual, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("credit with negative amount: expected ErrInvalidAmount, got %v", err)
	}
}

func TestLedgerUnknownChildGetsStubBalance(t *testing.T) {
	env := newTestEnv(t)

	_, balance, err := env.ledger.Credit("ghost-child", 7, "Erster Eintrag", models.SourceBonus, "")
	if err != nil {
		t.Fatalf("credit for unknown child failed: %v", err)
	}
	if balance != 7 {
		t.Errorf("expected balance 7, got %d", balance)
	}

	got, err := env.ledger.GetBalance("ghost-child")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if got != 7 {
		t.Errorf("stored balance = %d, want 7", got)
	}
}

func TestLedgerEveryOperationAppendsEntry(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	for i := 0; i < 5; i++ {
		if _, _, err := env.ledger.Credit(child.ID, 1, "Stern", models.SourceManual, ""); err != nil {
			t.Fatalf("credit %d failed: %v", i, err)
		}
	}

	entries, err := env.ledger.ListEntries(child.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 entries, got %d", len(entries))
	}
}

func TestTaskToggleSymmetry(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	subject := models.SubjectMathe
	task, err := env.tasks.CreateTask(child.ID, "Einmaleins üben", &subject, nil, 10, models.CreatedByParent)
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	task, delta, balance, err := env.tasks.ToggleDone(task.ID)
	if err != nil {
		t.Fatalf("toggle done failed: %v", err)
	}
	if !task.Done {
		t.Error("task should be done after toggle")
	}
	if task.CompletedAt == nil {
		t.Error("completed task should carry a completion time")
	}
	if delta != 10 {
		t.Errorf("expected delta +10 after completion, got %d", delta)
	}
	if balance != 10 {
		t.Errorf("expected balance 10 after completion, got %d", balance)
	}

	task, delta, balance, err = env.tasks.ToggleDone(task.ID)
	if err != nil {
		t.Fatalf("toggle undo failed: %v", err)
	}
	if task.Done {
		t.Error("task should be open after second toggle")
	}
	if task.CompletedAt != nil {
		t.Error("undone task should not carry a completion time")
	}
	if delta != -10 {
		t.Errorf("expected delta -10 after undo, got %d", delta)
	}
	if balance != 0 {
		t.Errorf("expected balance 0 after undo, got %d", balance)
	}

	entries, err := env.ledger.ListEntries(child.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 journal entries for toggle and undo, got %d", len(entries))
	}
}

func TestTaskUndoClampsAfterSpending(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	task, err := env.tasks.CreateTask(child.ID, "Zimmer aufräumen", nil, nil, 10, models.CreatedByParent)
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if _, _, _, err := env.tasks.ToggleDone(task.ID); err != nil {
		t.Fatalf("toggle done failed: %v", err)
	}
	if _, _, err := env.ledger.Debit(child.ID, 8, "Ausgegeben", models.SourceManual, ""); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	// Undo after spending: the journal records -10 but the balance stops at 0.
	_, delta, balance, err := env.tasks.ToggleDone(task.ID)
	if err != nil {
		t.Fatalf("toggle undo failed: %v", err)
	}
	if delta != -10 {
		t.Errorf("expected requested delta -10, got %d", delta)
	}
	if balance != 0 {
		t.Errorf("expected clamped balance 0, got %d", balance)
	}
}

func TestFreshChildCollectionsAreEmpty(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	entries, err := env.ledger.ListEntries(child.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no ledger entries, got %d", len(entries))
	}

	tasks, err := env.tasks.ListTasks(child.ID)
	if err != nil {
		t.Fatalf("list tasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}

	notes, err := env.notes.ListNotes(child.ID)
	if err != nil {
		t.Fatalf("list notes failed: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("expected no notes, got %d", len(notes))
	}

	wishes, err := env.wishes.ListWishes(child.ID)
	if err != nil {
		t.Fatalf("list wishes failed: %v", err)
	}
	if len(wishes) != 0 {
		t.Errorf("expected no wishes, got %d", len(wishes))
	}

	events, err := env.events.ListEvents(child.ID)
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}

	logs, err := env.logs.List(50)
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected an empty debug log, got %d entries", len(logs))
	}
}

func TestTaskConcurrentTogglesSerialize(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	task, err := env.tasks.CreateTask(child.ID, "Lesen üben", nil, nil, 10, models.CreatedByParent)
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	// An even number of toggles per round must always net out to an open
	// task and a zero balance, however the calls interleave.
	for attempt := 0; attempt < 25; attempt++ {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, _, _, err := env.tasks.ToggleDone(task.ID); err != nil {
					t.Errorf("toggle failed: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := env.tasks.GetTask(task.ID)
		if err != nil {
			t.Fatalf("get task failed: %v", err)
		}
		balance, err := env.ledger.GetBalance(child.ID)
		if err != nil {
			t.Fatalf("get balance failed: %v", err)
		}
		if got.Done || balance != 0 {
			t.Fatalf("attempt %d: done=%v balance=%d, want open task and balance 0", attempt, got.Done, balance)
		}
	}
}

func TestNoteToggleUnderstood(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	note, err := env.notes.CreateNote(child.ID, models.SubjectDeutsch, "Wörter mit ie", "file:///page1.jpg", time.Now())
	if err != nil {
		t.Fatalf("create note failed: %v", err)
	}

	note, delta, balance, err := env.notes.ToggleUnderstood(note.ID)
	if err != nil {
		t.Fatalf("toggle understood failed: %v", err)
	}
	if !note.Understood {
		t.Error("note should be understood after toggle")
	}
	if note.StarsEarned != NoteStars {
		t.Errorf("stars earned = %d, want %d", note.StarsEarned, NoteStars)
	}
	if delta != NoteStars {
		t.Errorf("expected delta %d, got %d", NoteStars, delta)
	}
	if balance != NoteStars {
		t.Errorf("expected balance %d, got %d", NoteStars, balance)
	}

	note, _, balance, err = env.notes.ToggleUnderstood(note.ID)
	if err != nil {
		t.Fatalf("toggle undo failed: %v", err)
	}
	if note.Understood {
		t.Error("note should no longer be understood after undo")
	}
	if note.StarsEarned != -NoteStars {
		t.Errorf("stars earned = %d, want %d mirroring the reversal", note.StarsEarned, -NoteStars)
	}
	if balance != 0 {
		t.Errorf("expected balance 0 after undo, got %d", balance)
	}
}

func TestWishRedemptionDebitsAndMovesToPending(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.Credit(child.ID, 30, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	wish, err := env.wishes.CreateWish(child.ID, "Kinobesuch", 25)
	if err != nil {
		t.Fatalf("create wish failed: %v", err)
	}
	if wish.Status != models.WishActive {
		t.Fatalf("new wish status = %s, want active", wish.Status)
	}

	wish, balance, err := env.wishes.RequestRedemption(wish.ID)
	if err != nil {
		t.Fatalf("redemption failed: %v", err)
	}
	if wish.Status != models.WishPending {
		t.Errorf("wish status = %s, want pending", wish.Status)
	}
	if wish.RequestedAt == nil {
		t.Error("pending wish should carry a request time")
	}
	if balance != 5 {
		t.Errorf("expected balance 5, got %d", balance)
	}

	entries, err := env.ledger.ListEntries(child.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Source != models.SourceWishRedeemed || entries[0].SourceID != wish.ID {
		t.Errorf("newest entry should reference the wish, got source=%s sourceId=%s", entries[0].Source, entries[0].SourceID)
	}
}

func TestWishRedemptionInsufficientStarsLeavesEverythingUntouched(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.Credit(child.ID, 10, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	wish, err := env.wishes.CreateWish(child.ID, "Spielkonsole", 500)
	if err != nil {
		t.Fatalf("create wish failed: %v", err)
	}

	if _, _, err := env.wishes.RequestRedemption(wish.ID); !errors.Is(err, ErrInsufficientStars) {
		t.Fatalf("expected ErrInsufficientStars, got %v", err)
	}

	wish, err = env.wishes.GetWish(wish.ID)
	if err != nil {
		t.Fatalf("get wish failed: %v", err)
	}
	if wish.Status != models.WishActive {
		t.Errorf("failed redemption must leave the wish active, got %s", wish.Status)
	}

	balance, err := env.ledger.GetBalance(child.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 10 {
		t.Errorf("failed redemption must leave the balance untouched, got %d", balance)
	}

	entries, err := env.ledger.ListEntries(child.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("failed redemption must not append journal entries, got %d", len(entries))
	}
}

func TestWishConcurrentRedeemsDebitOnce(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.Credit(child.ID, 100, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	wish, err := env.wishes.CreateWish(child.ID, "Lego-Set", 40)
	if err != nil {
		t.Fatalf("create wish failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.wishes.RequestRedemption(wish.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInvalidWishState):
			rejected++
		default:
			t.Fatalf("unexpected redemption error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 3 {
		t.Errorf("got %d successes and %d state rejections, want exactly 1 and 3", succeeded, rejected)
	}

	balance, err := env.ledger.GetBalance(child.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 60 {
		t.Errorf("balance = %d, want 60 after a single debit", balance)
	}
	entries, err := env.ledger.ListEntries(child.ID)
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected credit plus one debit in the journal, got %d entries", len(entries))
	}
}

func TestWishApproveAndFulfill(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.Credit(child.ID, 50, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	wish, err := env.wishes.CreateWish(child.ID, "Eis essen", 20)
	if err != nil {
		t.Fatalf("create wish failed: %v", err)
	}
	if _, _, err := env.wishes.RequestRedemption(wish.ID); err != nil {
		t.Fatalf("redemption failed: %v", err)
	}

	note := "Am Samstag"
	wish, err = env.wishes.Approve(wish.ID, &note)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if wish.Status != models.WishApproved || wish.ApprovedAt == nil {
		t.Errorf("approve should set status and timestamp, got %s", wish.Status)
	}
	if wish.ParentNote == nil || *wish.ParentNote != note {
		t.Error("approve should store the parent note")
	}

	// A decided wish cannot be decided again
	if _, err := env.wishes.Reject(wish.ID, nil); !errors.Is(err, ErrInvalidWishState) {
		t.Errorf("rejecting an approved wish: expected ErrInvalidWishState, got %v", err)
	}

	wish, err = env.wishes.Fulfill(wish.ID)
	if err != nil {
		t.Fatalf("fulfill failed: %v", err)
	}
	if wish.Status != models.WishFulfilled || wish.FulfilledAt == nil {
		t.Errorf("fulfill should set status and timestamp, got %s", wish.Status)
	}

	if _, err := env.wishes.Fulfill(wish.ID); !errors.Is(err, ErrInvalidWishState) {
		t.Errorf("fulfilling twice: expected ErrInvalidWishState, got %v", err)
	}
}

func TestWishRejectKeepsStarsByDefault(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.Credit(child.ID, 30, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	wish, err := env.wishes.CreateWish(child.ID, "Kinobesuch", 25)
	if err != nil {
		t.Fatalf("create wish failed: %v", err)
	}
	if _, _, err := env.wishes.RequestRedemption(wish.ID); err != nil {
		t.Fatalf("redemption failed: %v", err)
	}

	wish, err = env.wishes.Reject(wish.ID, nil)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if wish.Status != models.WishRejected || wish.RejectedAt == nil {
		t.Errorf("reject should set status and timestamp, got %s", wish.Status)
	}

	balance, err := env.ledger.GetBalance(child.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 5 {
		t.Errorf("default policy keeps the stars spent, balance = %d, want 5", balance)
	}
}

func TestWishRejectRefundsWhenEnabled(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if err := env.settings.SetBool(SettingRefundOnReject, true); err != nil {
		t.Fatalf("failed to enable refund setting: %v", err)
	}

	if _, _, err := env.ledger.Credit(child.ID, 30, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	wish, err := env.wishes.CreateWish(child.ID, "Kinobesuch", 25)
	if err != nil {
		t.Fatalf("create wish failed: %v", err)
	}
	if _, _, err := env.wishes.RequestRedemption(wish.ID); err != nil {
		t.Fatalf("redemption failed: %v", err)
	}

	if _, err := env.wishes.Reject(wish.ID, nil); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	balance, err := env.ledger.GetBalance(child.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 30 {
		t.Errorf("refund policy should restore the balance, got %d, want 30", balance)
	}
}

func TestWishRedeemNonActiveFails(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	if _, _, err := env.ledger.Credit(child.ID, 100, "Start", models.SourceBonus, ""); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	wish, err := env.wishes.CreateWish(child.ID, "Kinobesuch", 25)
	if err != nil {
		t.Fatalf("create wish failed: %v", err)
	}
	if _, _, err := env.wishes.RequestRedemption(wish.ID); err != nil {
		t.Fatalf("redemption failed: %v", err)
	}

	if _, _, err := env.wishes.RequestRedemption(wish.ID); !errors.Is(err, ErrInvalidWishState) {
		t.Errorf("double redemption: expected ErrInvalidWishState, got %v", err)
	}

	balance, err := env.ledger.GetBalance(child.ID)
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 75 {
		t.Errorf("double redemption must not debit twice, balance = %d, want 75", balance)
	}
}

func TestDebugLogCap(t *testing.T) {
	env := newTestEnv(t)

	// Rebuild the log service with a tiny cap to keep the test fast
	logRepo := repository.NewDebugLogRepository(env.db)
	logs := NewDebugLogService(logRepo, 10)

	for i := 0; i < 25; i++ {
		logs.Info("test", "entry", map[string]interface{}{"i": i})
	}

	entries, err := logs.List(0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("log should be capped at 10 entries, got %d", len(entries))
	}

	stats, err := logs.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 10 || stats.Info != 10 {
		t.Errorf("stats = %+v, want total 10 info 10", stats)
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register("mama@example.com", "geheim123", "Mama")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := env.auth.Register("mama@example.com", "geheim123", "Mama"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register: expected ErrEmailTaken, got %v", err)
	}

	if _, _, err := env.auth.Login("mama@example.com", "falsch123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	session, loggedIn, err := env.auth.Login("mama@example.com", "geheim123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Error("login should return the registered user")
	}

	validated, err := env.auth.ValidateSession(session.ID)
	if err != nil {
		t.Fatalf("validate session failed: %v", err)
	}
	if validated.ID != user.ID {
		t.Error("session should resolve to the registered user")
	}

	if err := env.auth.Logout(session.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := env.auth.ValidateSession(session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("after logout: expected ErrSessionNotFound, got %v", err)
	}
}

func TestPairingCodeExchange(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	pairing, err := env.pairing.IssuePairingCode(child.ID)
	if err != nil {
		t.Fatalf("issue pairing code failed: %v", err)
	}

	token, paired, err := env.pairing.ExchangePairingCode(pairing.Code)
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if paired.ID != child.ID {
		t.Error("exchange should return the paired child")
	}

	childID, err := env.pairing.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if childID != child.ID {
		t.Errorf("token child = %s, want %s", childID, child.ID)
	}

	// Codes are single-use
	if _, _, err := env.pairing.ExchangePairingCode(pairing.Code); !errors.Is(err, ErrPairingCodeInvalid) {
		t.Errorf("second exchange: expected ErrPairingCodeInvalid, got %v", err)
	}

	if _, err := env.pairing.ValidateToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token: expected ErrTokenInvalid, got %v", err)
	}
}

func TestChildStats(t *testing.T) {
	env := newTestEnv(t)
	child := env.mustCreateChild(t, "Emma")

	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)

	t1, err := env.tasks.CreateTask(child.ID, "Hausaufgaben", nil, &today, 5, models.CreatedByParent)
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if _, err := env.tasks.CreateTask(child.ID, "Vokabeln", nil, &today, 5, models.CreatedByParent); err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if _, err := env.tasks.CreateTask(child.ID, "Altes", nil, &yesterday, 5, models.CreatedByParent); err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if _, _, _, err := env.tasks.ToggleDone(t1.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	stats, err := env.children.GetStats(child.ID)
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.TasksToday != 2 {
		t.Errorf("tasks today = %d, want 2", stats.TasksToday)
	}
	if stats.CompletedTasksToday != 1 {
		t.Errorf("completed today = %d, want 1", stats.CompletedTasksToday)
	}
	if stats.TotalStars != 5 {
		t.Errorf("total stars = %d, want 5", stats.TotalStars)
	}
}
