package routes_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stellargather/insights"
	"stellargather/messaging"
	"stellargather/models"
	"stellargather/storage"
)

// store is the fake database shared by every in-memory repository.
type store struct {
	mu        sync.Mutex
	seq       int64
	users     map[int64]models.User // password kept in clear text
	events    map[int64]models.Event
	regs      map[int64]models.Registration
	orgs      map[int64]models.Organizer
	cats      map[int64]models.Category
	links     map[[2]int64]bool // {eventID, categoryID}
	feedbacks map[int64]models.Feedback

	comments      []models.Comment
	ratings       []models.Rating
	notifications []models.Notification
	interactions  []models.Interaction
	errorLogs     []models.ErrorLog
	contacts      []models.ContactMessage
	subscribers   map[string]models.NewsletterSubscriber
}

func newStore() *store {
	return &store{
		users:       map[int64]models.User{},
		events:      map[int64]models.Event{},
		regs:        map[int64]models.Registration{},
		orgs:        map[int64]models.Organizer{},
		cats:        map[int64]models.Category{},
		links:       map[[2]int64]bool{},
		feedbacks:   map[int64]models.Feedback{},
		subscribers: map[string]models.NewsletterSubscriber{},
	}
}

func (s *store) nextID() int64 { s.seq++; return s.seq }

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

/* ---------- users ---------- */

type userRepo struct{ *store }

func (r userRepo) List(context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range sortedKeys(r.users) {
		out = append(out, r.users[id].Public())
	}
	return out, nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u.Public(), nil
}

func (r userRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.users {
		if o.Email == u.Email || o.Username == u.Username {
			return models.ErrDuplicate
		}
	}
	u.ID = r.nextID()
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = *u
	return nil
}

func (r userRepo) Update(_ context.Context, id int64, upd models.UserUpdate) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Username, upd.Username)
	set(&u.Email, upd.Email)
	set(&u.FullName, upd.FullName)
	set(&u.Country, upd.Country)
	set(&u.Password, upd.Password)
	r.users[id] = u
	return u.Public(), nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r userRepo) ValidateCredentials(_ context.Context, email, plain string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			if u.Password != plain {
				return models.User{}, models.ErrInvalidCredentials
			}
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (r userRepo) CheckPassword(_ context.Context, id int64, plain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if u.Password != plain {
		return models.ErrInvalidCredentials
	}
	return nil
}

/* ---------- events ---------- */

type eventRepo struct{ *store }

func (r eventRepo) match(e models.Event, f models.EventFilter) bool {
	if f.Date != "" && e.Date.Format("2006-01-02") != f.Date {
		return false
	}
	if f.Country != "" && !strings.EqualFold(e.Country, f.Country) {
		return false
	}
	if f.OrganizerID != 0 && (e.OrganizerID == nil || *e.OrganizerID != f.OrganizerID) {
		return false
	}
	if f.CategoryID != 0 && !r.links[[2]int64{e.ID, f.CategoryID}] {
		return false
	}
	return true
}

func (r eventRepo) filtered(f models.EventFilter) []models.Event {
	out := []models.Event{}
	for _, id := range sortedKeys(r.events) {
		if e := r.events[id]; r.match(e, f) {
			out = append(out, e)
		}
	}
	return out
}

func (r eventRepo) List(context.Context) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filtered(models.EventFilter{}), nil
}

func (r eventRepo) ListPage(_ context.Context, f models.EventFilter, p models.Page) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filtered(f)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].ID > all[j].ID
		}
		return all[i].Date.After(all[j].Date)
	})
	start := min(p.Offset(), len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], nil
}

func (r eventRepo) Count(_ context.Context, f models.EventFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filtered(f)), nil
}

func (r eventRepo) Upcoming(_ context.Context, now time.Time, limit int) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Event{}
	for _, e := range r.filtered(models.EventFilter{}) {
		if e.Date.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out[:min(limit, len(out))], nil
}

func (r eventRepo) StartingBetween(_ context.Context, from, to time.Time) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Event{}
	for _, e := range r.filtered(models.EventFilter{}) {
		if e.Date.After(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r eventRepo) GetByID(_ context.Context, id int64) (models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (r eventRepo) Create(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID()
	r.events[e.ID] = *e
	return nil
}

func (r eventRepo) Update(_ context.Context, e *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return models.ErrNotFound
	}
	r.events[e.ID] = *e
	return nil
}

func (r eventRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r eventRepo) CountByDate(context.Context) ([]models.DateCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, e := range r.events {
		counts[e.Date.Format("2006-01-02")]++
	}
	out := []models.DateCount{}
	for d, n := range counts {
		out = append(out, models.DateCount{EventDate: d, EventCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate < out[j].EventDate })
	return out, nil
}

func (r eventRepo) CountByCountry(context.Context) ([]models.CountryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int{}
	for _, e := range r.events {
		counts[e.Country]++
	}
	out := []models.CountryCount{}
	for c, n := range counts {
		out = append(out, models.CountryCount{Country: c, EventCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out, nil
}

func (r eventRepo) CountByOrganizer(context.Context) ([]models.OrganizerCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.OrganizerCount{}
	for _, id := range sortedKeys(r.orgs) {
		n := 0
		for _, e := range r.events {
			if e.OrganizerID != nil && *e.OrganizerID == id {
				n++
			}
		}
		out = append(out, models.OrganizerCount{OrganizerID: id, OrganizerName: r.orgs[id].Name, EventCount: n})
	}
	return out, nil
}

/* ---------- registrations ---------- */

type regRepo struct{ *store }

func (r regRepo) List(context.Context) ([]models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Registration{}
	for _, id := range sortedKeys(r.regs) {
		out = append(out, r.regs[id])
	}
	return out, nil
}

func (r regRepo) GetByID(_ context.Context, id int64) (models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return models.Registration{}, models.ErrNotFound
	}
	return reg, nil
}

func (r regRepo) Create(_ context.Context, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.Status == "" {
		reg.Status = models.StatusRegistered
	}
	reg.ID = r.nextID()
	reg.RegistrationDate = time.Now().UTC()
	r.regs[reg.ID] = *reg
	return nil
}

func (r regRepo) Update(_ context.Context, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.regs[reg.ID]
	if !ok {
		return models.ErrNotFound
	}
	reg.RegistrationDate = old.RegistrationDate
	r.regs[reg.ID] = *reg
	return nil
}

func (r regRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.regs, id)
	return nil
}

func (r regRepo) count(pred func(models.Registration) bool) int {
	n := 0
	for _, reg := range r.regs {
		if pred(reg) {
			n++
		}
	}
	return n
}

func (r regRepo) FindActive(_ context.Context, userID, eventID int64) (models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := sortedKeys(r.regs)
	for i := len(keys) - 1; i >= 0; i-- {
		reg := r.regs[keys[i]]
		if reg.UserID == userID && reg.EventID == eventID && reg.Status == models.StatusRegistered {
			return reg, nil
		}
	}
	return models.Registration{}, models.ErrNotFound
}

func (r regRepo) RegisterChecked(_ context.Context, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[reg.EventID]
	if !ok {
		return models.ErrNotFound
	}
	if reg.ID != 0 {
		if _, ok := r.regs[reg.ID]; !ok {
			return models.ErrNotFound
		}
	}
	others := func(pred func(models.Registration) bool) int {
		return r.count(func(o models.Registration) bool {
			return o.ID != reg.ID && o.EventID == reg.EventID && pred(o)
		})
	}
	switch {
	case others(func(o models.Registration) bool { return o.UserID == reg.UserID && o.Status == models.StatusRegistered }) > 0:
		return models.Rule(models.ReasonAlreadyRegistered)
	case others(func(o models.Registration) bool { return o.UserID == reg.UserID && o.Status == models.StatusCanceled }) >= models.MaxCancellations:
		return models.Rule(models.ReasonCancelLimit)
	case others(func(o models.Registration) bool { return o.Status == models.StatusRegistered }) >= ev.MaxCapacity:
		return models.Rule(models.ReasonEventFull)
	}

	reg.Status = models.StatusRegistered
	if old, ok := r.regs[reg.ID]; ok {
		reg.RegistrationDate = old.RegistrationDate
	} else {
		reg.ID = r.nextID()
		reg.RegistrationDate = time.Now().UTC()
	}
	r.regs[reg.ID] = *reg
	return nil
}

func (r regRepo) CountActiveForEvent(_ context.Context, eventID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count(func(reg models.Registration) bool {
		return reg.EventID == eventID && reg.Status == models.StatusRegistered
	}), nil
}

func (r regRepo) ActiveUserIDs(_ context.Context, eventID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []int64{}
	for _, id := range sortedKeys(r.regs) {
		if reg := r.regs[id]; reg.EventID == eventID && reg.Status == models.StatusRegistered {
			out = append(out, reg.UserID)
		}
	}
	return out, nil
}

func (r regRepo) ListForUser(_ context.Context, userID int64, p models.Page) ([]models.UserRegistrationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.UserRegistrationEvent{}
	for _, id := range sortedKeys(r.regs) {
		reg := r.regs[id]
		e, ok := r.events[reg.EventID]
		if reg.UserID != userID || !ok {
			continue
		}
		out = append(out, models.UserRegistrationEvent{
			RegistrationID:   reg.ID,
			EventID:          e.ID,
			Name:             e.Name,
			Location:         e.Location,
			City:             e.City,
			Country:          e.Country,
			EventDate:        e.Date,
			Price:            e.Price,
			Status:           reg.Status,
			RegistrationDate: reg.RegistrationDate,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EventDate.After(out[j].EventDate) })
	start := min(p.Offset(), len(out))
	return out[start:min(start+p.Limit, len(out))], nil
}

func (r regRepo) CountForUser(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count(func(reg models.Registration) bool { return reg.UserID == userID }), nil
}

/* ---------- organizers ---------- */

type orgRepo struct{ *store }

func (r orgRepo) List(context.Context) ([]models.Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Organizer{}
	for _, id := range sortedKeys(r.orgs) {
		out = append(out, r.orgs[id])
	}
	return out, nil
}

func (r orgRepo) GetByID(_ context.Context, id int64) (models.Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[id]
	if !ok {
		return models.Organizer{}, models.ErrNotFound
	}
	return o, nil
}

func (r orgRepo) Create(_ context.Context, o *models.Organizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID()
	r.orgs[o.ID] = *o
	return nil
}

func (r orgRepo) Update(_ context.Context, o *models.Organizer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[o.ID]; !ok {
		return models.ErrNotFound
	}
	r.orgs[o.ID] = *o
	return nil
}

func (r orgRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.orgs, id)
	return nil
}

/* ---------- categories ---------- */

type catRepo struct{ *store }

func (r catRepo) List(context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Category{}
	for _, id := range sortedKeys(r.cats) {
		out = append(out, r.cats[id])
	}
	return out, nil
}

func (r catRepo) GetByID(_ context.Context, id int64) (models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cats[id]
	if !ok {
		return models.Category{}, models.ErrNotFound
	}
	return c, nil
}

func (r catRepo) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.cats {
		if strings.EqualFold(o.Name, c.Name) {
			return models.ErrDuplicate
		}
	}
	c.ID = r.nextID()
	r.cats[c.ID] = *c
	return nil
}

func (r catRepo) Update(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cats[c.ID]; !ok {
		return models.ErrNotFound
	}
	r.cats[c.ID] = *c
	return nil
}

func (r catRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cats[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.cats, id)
	return nil
}

func (r catRepo) ListWithEventCount(context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Category{}
	for _, id := range sortedKeys(r.cats) {
		c := r.cats[id]
		n := 0
		for link := range r.links {
			if link[1] == id {
				n++
			}
		}
		c.EventCount = &n
		out = append(out, c)
	}
	return out, nil
}

func (r catRepo) ListForEvent(_ context.Context, eventID int64) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Category{}
	for _, id := range sortedKeys(r.cats) {
		if r.links[[2]int64{eventID, id}] {
			out = append(out, r.cats[id])
		}
	}
	return out, nil
}

func (r catRepo) AddToEvent(_ context.Context, eventID, categoryID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[eventID]; !ok {
		return models.ErrNotFound
	}
	if r.links[[2]int64{eventID, categoryID}] {
		return models.Rule("category already linked to this event")
	}
	n := 0
	for link := range r.links {
		if link[0] == eventID {
			n++
		}
	}
	if n >= models.MaxCategoriesPerEvent {
		return models.Rule("an event can have at most %d categories", models.MaxCategoriesPerEvent)
	}
	r.links[[2]int64{eventID, categoryID}] = true
	return nil
}

func (r catRepo) RemoveFromEvent(_ context.Context, eventID, categoryID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := [2]int64{eventID, categoryID}
	if !r.links[k] {
		return models.ErrNotFound
	}
	delete(r.links, k)
	return nil
}

/* ---------- feedbacks ---------- */

type feedbackRepo struct{ *store }

func (r feedbackRepo) Create(_ context.Context, f *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = r.nextID()
	f.Timestamp = time.Now().UTC()
	r.feedbacks[f.ID] = *f
	return nil
}

func (r feedbackRepo) GetByID(_ context.Context, id int64) (models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.feedbacks[id]
	if !ok {
		return models.Feedback{}, models.ErrNotFound
	}
	return f, nil
}

func (r feedbackRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.feedbacks[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.feedbacks, id)
	return nil
}

func (r feedbackRepo) ListForEvent(_ context.Context, eventID int64, p models.Page) ([]models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Feedback{}
	keys := sortedKeys(r.feedbacks)
	for i := len(keys) - 1; i >= 0; i-- {
		if f := r.feedbacks[keys[i]]; f.EventID == eventID {
			out = append(out, f)
		}
	}
	start := min(p.Offset(), len(out))
	return out[start:min(start+p.Limit, len(out))], nil
}

/* ---------- documents ---------- */

type docRepo struct{ *store }

func (r docRepo) stamp(id *primitive.ObjectID, ts *time.Time) {
	*id = primitive.NewObjectID()
	if ts.IsZero() {
		*ts = time.Now().UTC()
	}
}

type commentRepo struct{ docRepo }

func (r commentRepo) Create(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&c.ID, &c.Timestamp)
	r.comments = append(r.comments, *c)
	return nil
}

func (r commentRepo) ListByEvent(_ context.Context, eventID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.comments {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

type ratingRepo struct{ docRepo }

func (r ratingRepo) Create(_ context.Context, rt *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&rt.ID, &rt.Timestamp)
	r.ratings = append(r.ratings, *rt)
	return nil
}

type notificationRepo struct{ docRepo }

func (r notificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&n.ID, &n.Timestamp)
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r notificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID.Hex() == id {
			r.notifications[i].Read = true
			return nil
		}
	}
	return models.ErrNotFound
}

type interactionRepo struct{ docRepo }

func (r interactionRepo) Create(_ context.Context, in *models.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&in.ID, &in.Timestamp)
	r.interactions = append(r.interactions, *in)
	return nil
}

func (r interactionRepo) ListByUser(_ context.Context, userID string) ([]models.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Interaction{}
	for _, in := range r.interactions {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out, nil
}

type errorLogRepo struct{ docRepo }

func (r errorLogRepo) Create(_ context.Context, e *models.ErrorLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&e.ID, &e.Timestamp)
	r.errorLogs = append(r.errorLogs, *e)
	return nil
}

func (r errorLogRepo) List(context.Context) ([]models.ErrorLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ErrorLog{}, r.errorLogs...), nil
}

type contactRepo struct{ docRepo }

func (r contactRepo) Create(_ context.Context, m *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamp(&m.ID, &m.Timestamp)
	r.contacts = append(r.contacts, *m)
	return nil
}

type newsletterRepo struct{ docRepo }

func (r newsletterRepo) Subscribe(_ context.Context, s *models.NewsletterSubscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscribers[s.Email]; ok {
		return models.ErrDuplicate
	}
	r.stamp(&s.ID, &s.SubscribedAt)
	r.subscribers[s.Email] = *s
	return nil
}

/* ---------- infrastructure ---------- */

type fakePublisher struct {
	mu     sync.Mutex
	events []messaging.RegistrationEvent
	err    error
}

func (p *fakePublisher) PublishRegistration(_ context.Context, ev messaging.RegistrationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) sent() []messaging.RegistrationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]messaging.RegistrationEvent{}, p.events...)
}

// memBlobs backs a real storage.Images so uploads are validated for real.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

var _ storage.Blobs = (*memBlobs)(nil)

type fakeStatistics struct {
	answer insights.Answer
	err    error
	asked  []string
}

func (f *fakeStatistics) Answer(_ context.Context, q string) (insights.Answer, error) {
	f.asked = append(f.asked, q)
	return f.answer, f.err
}

var errBoom = errors.New("boom")
