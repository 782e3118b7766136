package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/repository/contract"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/credit"
	"gen8n-be/pkg/events"
	"gen8n-be/pkg/onboarding"

	"github.com/google/uuid"
)

// memDB is an in-memory stand-in for Postgres. Begin snapshots it and
// Rollback restores the snapshot, which is enough to observe transactional
// behaviour in service tests.
type memDB struct {
	mu        sync.Mutex
	users     map[uuid.UUID]entity.User
	providers []entity.UserProvider
	settings  map[uuid.UUID]entity.Settings
	profiles  map[uuid.UUID]entity.Profile
	workflows map[uuid.UUID]entity.Workflow
	txns      []entity.CreditTransaction
	feedback  []entity.Feedback

	// beforeNameUpdate runs inside UpdateName, standing in for a write
	// committed by another request mid-transaction.
	beforeNameUpdate func()
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[uuid.UUID]entity.User{},
		settings:  map[uuid.UUID]entity.Settings{},
		profiles:  map[uuid.UUID]entity.Profile{},
		workflows: map[uuid.UUID]entity.Workflow{},
	}
}

func copySettings(s entity.Settings) entity.Settings {
	keys := make(map[credit.Provider]string, len(s.APIKeys))
	for k, v := range s.APIKeys {
		keys[k] = v
	}
	names := make(map[credit.Provider]string, len(s.KeyNames))
	for k, v := range s.KeyNames {
		names[k] = v
	}
	s.APIKeys, s.KeyNames = keys, names
	return s
}

func (d *memDB) snapshot() *memDB {
	d.mu.Lock()
	defer d.mu.Unlock()
	c := newMemDB()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.settings {
		c.settings[k] = copySettings(v)
	}
	for k, v := range d.profiles {
		c.profiles[k] = v
	}
	for k, v := range d.workflows {
		c.workflows[k] = v
	}
	c.providers = append(c.providers, d.providers...)
	c.txns = append(c.txns, d.txns...)
	c.feedback = append(c.feedback, d.feedback...)
	return c
}

func (d *memDB) restore(s *memDB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users, d.providers, d.settings, d.profiles = s.users, s.providers, s.settings, s.profiles
	d.workflows, d.txns, d.feedback = s.workflows, s.txns, s.feedback
}

// seed helpers

func (d *memDB) addUser(u entity.User) *entity.User {
	if u.Id == uuid.Nil {
		u.Id = uuid.New()
	}
	if u.Email == "" {
		u.Email = u.Id.String()[:8] + "@example.com"
	}
	d.mu.Lock()
	d.users[u.Id] = u
	d.mu.Unlock()
	return &u
}

func (d *memDB) putSettings(s *entity.Settings) {
	d.mu.Lock()
	d.settings[s.UserId] = copySettings(*s)
	d.mu.Unlock()
}

func (d *memDB) user(id uuid.UUID) entity.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users[id]
}

func (d *memDB) settingsOf(id uuid.UUID) (entity.Settings, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.settings[id]
	return copySettings(s), ok
}

func (d *memDB) transactions(userID uuid.UUID) []entity.CreditTransaction {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []entity.CreditTransaction
	for _, t := range d.txns {
		if t.UserId == userID {
			out = append(out, t)
		}
	}
	return out
}

func (d *memDB) workflowCount(userID uuid.UUID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, w := range d.workflows {
		if w.UserId == userID {
			n++
		}
	}
	return n
}

type memFactory struct {
	db *memDB
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{db: f.db}
}

type memUoW struct {
	db   *memDB
	snap *memDB
}

func (u *memUoW) Begin(ctx context.Context) error {
	if u.snap != nil {
		return unitofwork.ErrTxAlreadyStarted
	}
	u.snap = u.db.snapshot()
	return nil
}

func (u *memUoW) Commit() error {
	if u.snap == nil {
		return unitofwork.ErrNoTransaction
	}
	u.snap = nil
	return nil
}

func (u *memUoW) Rollback() error {
	if u.snap == nil {
		return unitofwork.ErrNoTransaction
	}
	u.db.restore(u.snap)
	u.snap = nil
	return nil
}

func (u *memUoW) UserRepository() contract.UserRepository         { return memUsers{u.db} }
func (u *memUoW) SettingsRepository() contract.SettingsRepository { return memSettings{u.db} }
func (u *memUoW) ProfileRepository() contract.ProfileRepository   { return memProfiles{u.db} }
func (u *memUoW) WorkflowRepository() contract.WorkflowRepository { return memWorkflows{u.db} }
func (u *memUoW) CreditTransactionRepository() contract.CreditTransactionRepository {
	return memTxns{u.db}
}
func (u *memUoW) FeedbackRepository() contract.FeedbackRepository { return memFeedback{u.db} }

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, user *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.users[user.Id] = *user
	return nil
}

func (r memUsers) UpdateName(_ context.Context, id uuid.UUID, firstName, lastName string) error {
	if r.db.beforeNameUpdate != nil {
		r.db.beforeNameUpdate()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.FirstName, u.LastName, u.UpdatedAt = firstName, lastName, time.Now()
	r.db.users[id] = u
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == strings.ToLower(email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUsers) AddCredits(_ context.Context, id uuid.UUID, amount int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u := r.db.users[id]
	u.Credits += amount
	r.db.users[id] = u
	return nil
}

func (r memUsers) IncrementUsage(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u := r.db.users[id]
	u.UsageCount++
	r.db.users[id] = u
	return nil
}

func (r memUsers) FindByProvider(ctx context.Context, provider, providerUserID string) (*entity.User, error) {
	r.db.mu.Lock()
	var id uuid.UUID
	for _, p := range r.db.providers {
		if p.ProviderName == provider && p.ProviderUserId == providerUserID {
			id = p.UserId
		}
	}
	r.db.mu.Unlock()
	if id == uuid.Nil {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r memUsers) SaveProvider(_ context.Context, provider *entity.UserProvider) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.providers = append(r.db.providers, *provider)
	return nil
}

type memSettings struct{ db *memDB }

func (r memSettings) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Settings, error) {
	s, ok := r.db.settingsOf(userID)
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSettings) Upsert(_ context.Context, settings *entity.Settings) error {
	r.db.putSettings(settings)
	return nil
}

type memProfiles struct{ db *memDB }

func (r memProfiles) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProfiles) Upsert(_ context.Context, profile *entity.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.profiles[profile.UserId] = *profile
	return nil
}

type memWorkflows struct{ db *memDB }

func (r memWorkflows) Create(_ context.Context, w *entity.Workflow) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.workflows[w.Id] = *w
	return nil
}

func (r memWorkflows) Update(ctx context.Context, w *entity.Workflow) error {
	return r.Create(ctx, w)
}

func (r memWorkflows) FindByID(_ context.Context, id uuid.UUID) (*entity.Workflow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w, ok := r.db.workflows[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r memWorkflows) FindOwned(ctx context.Context, id, userID uuid.UUID) (*entity.Workflow, error) {
	w, err := r.FindByID(ctx, id)
	if err != nil || w == nil || w.UserId != userID {
		return nil, err
	}
	return w, nil
}

func (r memWorkflows) List(_ context.Context, userID uuid.UUID, q entity.WorkflowQuery) ([]*entity.Workflow, error) {
	r.db.mu.Lock()
	var rows []*entity.Workflow
	term := strings.ToLower(strings.TrimSpace(q.Search))
	for _, w := range r.db.workflows {
		if w.UserId != userID {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(w.Name), term) && !strings.Contains(strings.ToLower(w.Description), term) {
			continue
		}
		w := w
		rows = append(rows, &w)
	}
	r.db.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if q.From >= len(rows) {
		return nil, nil
	}
	end := q.To + 1
	if end > len(rows) {
		end = len(rows)
	}
	return rows[q.From:end], nil
}

func (r memWorkflows) Delete(_ context.Context, id, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w, ok := r.db.workflows[id]
	if !ok || w.UserId != userID {
		return 0, nil
	}
	delete(r.db.workflows, id)
	return 1, nil
}

func (r memWorkflows) CountByStatus(_ context.Context, userID uuid.UUID) (map[entity.WorkflowStatus]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := map[entity.WorkflowStatus]int64{}
	for _, w := range r.db.workflows {
		if w.UserId == userID {
			counts[w.Status]++
		}
	}
	return counts, nil
}

type memTxns struct{ db *memDB }

func (r memTxns) Create(_ context.Context, t *entity.CreditTransaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.txns = append(r.db.txns, *t)
	return nil
}

func (r memTxns) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.CreditTransaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.CreditTransaction
	for i := len(r.db.txns) - 1; i >= 0 && len(out) < limit; i-- {
		if t := r.db.txns[i]; t.UserId == userID {
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r memTxns) ExistsByCheckoutSession(_ context.Context, sessionID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.txns {
		if t.StripeCheckoutSessionId != nil && *t.StripeCheckoutSessionId == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (r memTxns) ExistsByPaymentIntent(_ context.Context, intentID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.txns {
		if t.StripePaymentIntentId != nil && *t.StripePaymentIntentId == intentID {
			return true, nil
		}
	}
	return false, nil
}

func (r memTxns) AttachPaymentIntent(_ context.Context, userID uuid.UUID, intentID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := len(r.db.txns) - 1; i >= 0; i-- {
		t := &r.db.txns[i]
		if t.UserId == userID && t.Type == entity.CreditTransactionPurchase && t.StripePaymentIntentId == nil {
			id := intentID
			t.StripePaymentIntentId = &id
			return true, nil
		}
	}
	return false, nil
}

type memFeedback struct{ db *memDB }

func (r memFeedback) Create(_ context.Context, f *entity.Feedback) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.feedback = append(r.db.feedback, *f)
	return nil
}

// recordingPublisher keeps published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type memWizardStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]onboarding.Wizard
}

func newMemWizardStore() *memWizardStore {
	return &memWizardStore{states: map[uuid.UUID]onboarding.Wizard{}}
}

func (s *memWizardStore) Load(_ context.Context, userID uuid.UUID) (*onboarding.Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	keys := make(map[string]string, len(w.Data.APIKeys))
	for k, v := range w.Data.APIKeys {
		keys[k] = v
	}
	w.Data.APIKeys = keys
	return &w, nil
}

func (s *memWizardStore) Save(_ context.Context, userID uuid.UUID, w *onboarding.Wizard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = *w
	return nil
}

func (s *memWizardStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
	return nil
}

func nopLog() logger.ILogger { return logger.NewNopLogger() }

func byokSettings(userID uuid.UUID) *entity.Settings {
	s := entity.NewSettings(userID)
	s.UseOwnAPIKeys = true
	s.MainProvider = credit.ProviderAnthropic
	s.FallbackProvider = credit.ProviderOpenAI
	s.APIKeys[credit.ProviderAnthropic] = "sk-ant-api03-mainkey1234"
	s.APIKeys[credit.ProviderOpenAI] = "sk-proj-fallbackkey5678"
	s.OnboardingComplete = true
	return s
}
