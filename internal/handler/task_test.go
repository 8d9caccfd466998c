package handler_test

import (
	"fmt"
	"net/http"
	"testing"
)

// TestTaskLifecycle walks the standard flow: empty list, create, status
// change, cross-user delete attempt, owner delete.
func TestTaskLifecycle(t *testing.T) {
	r := newTestRouter(t)
	aToken, aID := register(t, r, "a", "p", false)
	bToken, _ := register(t, r, "b", "p", false)

	w := do(t, r, http.MethodGet, "/api/tasks", aToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var tasks []taskPayload
	decode(t, w, &tasks)
	if len(tasks) != 0 {
		t.Fatalf("fresh user has %d tasks, want 0", len(tasks))
	}

	task := createTask(t, r, aToken, map[string]interface{}{"title": "T"})
	if task.Status != "todo" {
		t.Errorf("status = %q, want todo", task.Status)
	}
	if task.UserID == nil || *task.UserID != aID {
		t.Errorf("userId = %v, want %d", task.UserID, aID)
	}

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", task.ID), aToken,
		map[string]interface{}{"status": "in_progress"})
	if w.Code != http.StatusOK {
		t.Fatalf("status update: status = %d body %s", w.Code, w.Body.String())
	}
	var updated taskPayload
	decode(t, w, &updated)
	if updated.Status != "in_progress" {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}

	// a different non-admin may not delete it
	w = do(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), bToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("cross-user delete: status = %d, want 403", w.Code)
	}

	// the owner may
	w = do(t, r, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", task.ID), aToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete: status = %d", w.Code)
	}
	var delResp struct {
		Task taskPayload `json:"task"`
	}
	decode(t, w, &delResp)
	if delResp.Task.ID != task.ID {
		t.Errorf("deleted task id = %d, want %d", delResp.Task.ID, task.ID)
	}

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), aToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	r := newTestRouter(t)
	token, _ := register(t, r, "u", "p", false)

	for _, body := range []map[string]interface{}{
		{},
		{"title": ""},
		{"title": "   "},
		{"title": "ok", "status": "blocked"},
	} {
		w := do(t, r, http.MethodPost, "/api/tasks", token, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("create %v: status = %d, want 400", body, w.Code)
		}
	}
}

func TestTaskOwnershipOnAllVerbs(t *testing.T) {
	r := newTestRouter(t)
	ownerToken, _ := register(t, r, "owner", "p", false)
	otherToken, _ := register(t, r, "other", "p", false)
	adminToken, _ := register(t, r, "root", "p", true)

	task := createTask(t, r, ownerToken, map[string]interface{}{"title": "mine"})
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	checks := []struct {
		method string
		path   string
		body   map[string]interface{}
	}{
		{http.MethodGet, path, nil},
		{http.MethodPut, path, map[string]interface{}{"title": "stolen"}},
		{http.MethodPatch, path, map[string]interface{}{"title": "stolen"}},
		{http.MethodPatch, path + "/status", map[string]interface{}{"status": "done"}},
		{http.MethodDelete, path, nil},
	}
	for _, c := range checks {
		w := do(t, r, c.method, c.path, otherToken, c.body)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s as non-owner: status = %d, want 403", c.method, c.path, w.Code)
		}
	}

	// admin passes the same checks
	w := do(t, r, http.MethodGet, path, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin get: status = %d, want 200", w.Code)
	}
}

func TestTaskStatusRejectedBeforeMutation(t *testing.T) {
	r := newTestRouter(t)
	token, _ := register(t, r, "u", "p", false)
	task := createTask(t, r, token, map[string]interface{}{"title": "T"})

	for _, bad := range []string{"doing", "DONE", "finished", ""} {
		w := do(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", task.ID), token,
			map[string]interface{}{"status": bad})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status %q: status = %d, want 400", bad, w.Code)
		}
	}

	// an invalid status against a missing task is still 400: validation
	// happens before the store is touched
	w := do(t, r, http.MethodPatch, "/api/tasks/9999/status", token,
		map[string]interface{}{"status": "bogus"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid status on missing task: status = %d, want 400", w.Code)
	}

	// task unchanged
	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), token, nil)
	var got taskPayload
	decode(t, w, &got)
	if got.Status != "todo" {
		t.Errorf("status mutated to %q by rejected updates", got.Status)
	}
}

func TestTaskStatusAnyTransition(t *testing.T) {
	r := newTestRouter(t)
	token, _ := register(t, r, "u", "p", false)
	task := createTask(t, r, token, map[string]interface{}{"title": "T"})

	// no ordering constraint: done straight from todo, then back
	for _, status := range []string{"done", "todo", "in_progress", "todo"} {
		w := do(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d/status", task.ID), token,
			map[string]interface{}{"status": status})
		if w.Code != http.StatusOK {
			t.Fatalf("transition to %q: status = %d", status, w.Code)
		}
	}
}

func TestTaskPartialUpdate(t *testing.T) {
	r := newTestRouter(t)
	token, _ := register(t, r, "u", "p", false)
	task := createTask(t, r, token, map[string]interface{}{"title": "T", "description": "old"})

	w := do(t, r, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token,
		map[string]interface{}{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty update: status = %d, want 400", w.Code)
	}

	w = do(t, r, http.MethodPut, fmt.Sprintf("/api/tasks/%d", task.ID), token,
		map[string]interface{}{"totalMinutes": -5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative minutes: status = %d, want 400", w.Code)
	}

	w = do(t, r, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), token,
		map[string]interface{}{"description": "new", "totalMinutes": 45})
	if w.Code != http.StatusOK {
		t.Fatalf("partial update: status = %d body %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), token, nil)
	var got taskPayload
	decode(t, w, &got)
	if got.Title != "T" {
		t.Errorf("title = %q, want unchanged T", got.Title)
	}
	if got.Description != "new" || got.TotalMinutes != 45 {
		t.Errorf("got %+v, want description=new totalMinutes=45", got)
	}
}

func TestAdminAssignsOwner(t *testing.T) {
	r := newTestRouter(t)
	adminToken, _ := register(t, r, "root", "p", true)
	_, devID := register(t, r, "dev", "p", false)

	task := createTask(t, r, adminToken, map[string]interface{}{"title": "assigned", "userId": devID})
	if task.UserID == nil || *task.UserID != devID {
		t.Errorf("userId = %v, want %d", task.UserID, devID)
	}

	w := do(t, r, http.MethodPost, "/api/tasks", adminToken,
		map[string]interface{}{"title": "ghost", "userId": 9999})
	if w.Code != http.StatusBadRequest {
		t.Errorf("assign to missing user: status = %d, want 400", w.Code)
	}
}

func TestNonAdminCannotAssignOwner(t *testing.T) {
	r := newTestRouter(t)
	uToken, uID := register(t, r, "u", "p", false)
	_, vID := register(t, r, "v", "p", false)

	task := createTask(t, r, uToken, map[string]interface{}{"title": "sneaky", "userId": vID})
	if task.UserID == nil || *task.UserID != uID {
		t.Errorf("userId = %v, want caller id %d (explicit owner ignored for non-admins)", task.UserID, uID)
	}
}

func TestTaskListScoping(t *testing.T) {
	r := newTestRouter(t)
	aToken, _ := register(t, r, "a", "p", false)
	bToken, _ := register(t, r, "b", "p", false)
	adminToken, _ := register(t, r, "root", "p", true)

	createTask(t, r, aToken, map[string]interface{}{"title": "a1"})
	createTask(t, r, aToken, map[string]interface{}{"title": "a2"})
	createTask(t, r, bToken, map[string]interface{}{"title": "b1"})

	var aTasks []taskPayload
	decode(t, do(t, r, http.MethodGet, "/api/tasks", aToken, nil), &aTasks)
	if len(aTasks) != 2 {
		t.Errorf("a sees %d tasks, want 2", len(aTasks))
	}

	var allTasks []taskPayload
	decode(t, do(t, r, http.MethodGet, "/api/tasks", adminToken, nil), &allTasks)
	if len(allTasks) != 3 {
		t.Errorf("admin sees %d tasks, want 3", len(allTasks))
	}
}

func TestTaskNotFoundBeforeForbidden(t *testing.T) {
	r := newTestRouter(t)
	token, _ := register(t, r, "u", "p", false)

	w := do(t, r, http.MethodGet, "/api/tasks/12345", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing task: status = %d, want 404", w.Code)
	}
}
