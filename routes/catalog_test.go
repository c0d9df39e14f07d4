package routes_test

import (
	"net/http"
	"testing"
	"time"

	"stellargather/models"
)

/* ---------- tests for /organizers ---------- */

func TestOrganizers_CRUD(t *testing.T) {
	deps := setupServerWithDeps(t)
	token := authToken(t, deps, 1, true)

	if w := doReq(deps.s, http.MethodPost, "/organizers", `{"name":"Gophers"}`, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: want 401, got %d", w.Code)
	}

	w := doReq(deps.s, http.MethodPost, "/organizers", `{"name":"Gophers","email":"g@go.dev"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	org := decode[models.Organizer](t, w)
	path := "/organizers/" + itoa(org.ID)

	if w := doReq(deps.s, http.MethodPost, "/organizers", `{"name":"x","email":"nope"}`, token); w.Code != http.StatusBadRequest {
		t.Fatalf("bad email: want 400, got %d", w.Code)
	}

	w = doReq(deps.s, http.MethodPut, path, `{"name":"Gopher Club"}`, token)
	if w.Code != http.StatusOK || deps.st.orgs[org.ID].Name != "Gopher Club" {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	w = doReq(deps.s, http.MethodGet, "/organizers", "", "")
	if got := decode[[]models.Organizer](t, w); len(got) != 1 {
		t.Fatalf("list: %+v", got)
	}
	if w := doReq(deps.s, http.MethodDelete, path, "", token); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodGet, path, "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: want 404, got %d", w.Code)
	}
}

// POST /organizers/:id/image｜200x200 only.
func TestOrganizers_UploadImage(t *testing.T) {
	deps := setupServerWithDeps(t)
	token := authToken(t, deps, 1, true)
	deps.st.orgs[5] = models.Organizer{ID: 5, Name: "Gophers"}

	if w := uploadReq(t, deps.s, "/organizers/5/image", webpImage(200, 200), token); w.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	if w := uploadReq(t, deps.s, "/organizers/5/image", webpImage(201, 200), token); w.Code != http.StatusBadRequest {
		t.Fatalf("wrong size: want 400, got %d", w.Code)
	}
}

/* ---------- tests for /categories ---------- */

func TestCategories_CRUDAndDuplicate(t *testing.T) {
	deps := setupServerWithDeps(t)
	token := authToken(t, deps, 1, true)

	w := doReq(deps.s, http.MethodPost, "/categories", `{"name":"Music"}`, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	cat := decode[models.Category](t, w)

	if w := doReq(deps.s, http.MethodPost, "/categories", `{"name":"Music"}`, token); w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: want 400, got %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodPut, "/categories/"+itoa(cat.ID), `{"name":"Live music"}`, token); w.Code != http.StatusOK {
		t.Fatalf("update: %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodGet, "/categories/"+itoa(cat.ID), "", ""); w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodDelete, "/categories/"+itoa(cat.ID), "", token); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodGet, "/categories", "", ""); len(decode[[]models.Category](t, w)) != 0 {
		t.Fatalf("list after delete: %s", w.Body.String())
	}
}

// POST /event_categories｜at most two per event, no duplicates.
func TestEventCategories_LinkRules(t *testing.T) {
	deps := setupServerWithDeps(t)
	token := authToken(t, deps, 1, true)
	ev := deps.addEvent(models.Event{Date: testNow.Add(time.Hour)})
	for _, id := range []int64{101, 102, 103} {
		deps.st.cats[id] = models.Category{ID: id, Name: "c" + itoa(id)}
	}
	link := func(catID int64) string {
		return `{"event_id":"` + itoa(ev.ID) + `","category_id":` + itoa(catID) + `}`
	}

	if w := doReq(deps.s, http.MethodPost, "/event_categories", link(101), token); w.Code != http.StatusCreated {
		t.Fatalf("first link: %d %s", w.Code, w.Body.String())
	}
	w := doReq(deps.s, http.MethodPost, "/event_categories", link(101), token)
	if w.Code != http.StatusBadRequest || detail(t, w) != "category already linked to this event" {
		t.Fatalf("duplicate link: %d %s", w.Code, w.Body.String())
	}
	if w := doReq(deps.s, http.MethodPost, "/event_categories", link(102), token); w.Code != http.StatusCreated {
		t.Fatalf("second link: %d", w.Code)
	}
	w = doReq(deps.s, http.MethodPost, "/event_categories", link(103), token)
	if w.Code != http.StatusBadRequest || detail(t, w) != "an event can have at most 2 categories" {
		t.Fatalf("third link: %d %s", w.Code, w.Body.String())
	}
	if w := doReq(deps.s, http.MethodPost, "/event_categories", link(999), token); w.Code != http.StatusNotFound {
		t.Fatalf("unknown category: want 404, got %d", w.Code)
	}

	w = doReq(deps.s, http.MethodGet, "/events/"+itoa(ev.ID)+"/categories", "", "")
	if got := decode[[]models.Category](t, w); len(got) != 2 {
		t.Fatalf("event categories: %+v", got)
	}
	w = doReq(deps.s, http.MethodGet, "/categories/101/events", "", "")
	if got := decode[[]models.Event](t, w); len(got) != 1 || got[0].ID != ev.ID {
		t.Fatalf("category events: %+v", got)
	}
	w = doReq(deps.s, http.MethodGet, "/categories/101/events-count", "", "")
	if got := decode[map[string]int](t, w); got["event_count"] != 1 {
		t.Fatalf("category events count: %s", w.Body.String())
	}

	w = doReq(deps.s, http.MethodGet, "/categories/events/count", "", "")
	counts := decode[[]models.Category](t, w)
	if len(counts) != 3 || counts[0].EventCount == nil || *counts[0].EventCount != 1 || *counts[2].EventCount != 0 {
		t.Fatalf("categories with counts: %s", w.Body.String())
	}

	path := "/event_categories/" + itoa(ev.ID) + "/101"
	if w := doReq(deps.s, http.MethodDelete, path, "", token); w.Code != http.StatusNoContent {
		t.Fatalf("unlink: %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodDelete, path, "", token); w.Code != http.StatusNotFound {
		t.Fatalf("unlink again: want 404, got %d", w.Code)
	}
}

/* ---------- tests for /feedbacks ---------- */

func TestFeedbacks_CreateGetDelete(t *testing.T) {
	deps := setupServerWithDeps(t)
	ev := deps.addEvent(models.Event{Date: testNow})

	body := `{"user_id":1,"event_id":` + itoa(ev.ID) + `,"comment_text":" great ","rating_value":"5"}`
	w := doReq(deps.s, http.MethodPost, "/feedbacks", body, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	f := decode[models.Feedback](t, w)
	if f.CommentText != "great" || f.RatingValue != 5 {
		t.Fatalf("unexpected feedback: %+v", f)
	}

	w = doReq(deps.s, http.MethodGet, "/events/"+itoa(ev.ID)+"/feedbacks", "", "")
	if got := decode[[]models.Feedback](t, w); len(got) != 1 {
		t.Fatalf("event feedbacks: %+v", got)
	}
	if w := doReq(deps.s, http.MethodGet, "/feedbacks/"+itoa(f.ID), "", ""); w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodDelete, "/feedbacks/"+itoa(f.ID), "", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodGet, "/feedbacks/"+itoa(f.ID), "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: want 404, got %d", w.Code)
	}
}

func TestFeedbacks_Create_Validation(t *testing.T) {
	deps := setupServerWithDeps(t)
	ev := deps.addEvent(models.Event{Date: testNow})

	w := doReq(deps.s, http.MethodPost, "/feedbacks", `{"user_id":1,"event_id":999,"rating_value":3}`, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing event: want 404, got %d", w.Code)
	}
	for _, rating := range []string{"0", "6"} {
		body := `{"user_id":1,"event_id":` + itoa(ev.ID) + `,"rating_value":` + rating + `}`
		if w := doReq(deps.s, http.MethodPost, "/feedbacks", body, ""); w.Code != http.StatusBadRequest {
			t.Fatalf("rating %s: want 400, got %d", rating, w.Code)
		}
	}
}

// Writes drop the cached pages of the namespaces they touch.
func TestFeedbacks_Create_PurgesEventCache(t *testing.T) {
	deps := setupServerWithDeps(t)
	ev := deps.addEvent(models.Event{Date: testNow})
	_ = deps.mr.Set("cache:events:abc", "stale")
	_ = deps.mr.Set("cache:categories:abc", "fresh")

	body := `{"user_id":1,"event_id":` + itoa(ev.ID) + `,"rating_value":4}`
	if w := doReq(deps.s, http.MethodPost, "/feedbacks", body, ""); w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	if deps.mr.Exists("cache:events:abc") {
		t.Fatalf("events cache should be purged")
	}
	if !deps.mr.Exists("cache:categories:abc") {
		t.Fatalf("categories cache should be kept")
	}
}
