package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/form-server/config"
	"github.com/vnkhanh/form-server/live"
	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/testutil"
)

func TestSubmitToDraftIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Nháp", "nhap-1", models.FormStatusDraft)
	q := testutil.SeedQuestion(t, db, f.ID, models.QuestionShortText, "Tên?", 0)

	w := testutil.DoRequest(r, "POST", "/api/submit/nhap-1", map[string]interface{}{
		"answers": []interface{}{map[string]interface{}{"questionId": q.ID, "answer": "An"}},
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoRequest(r, "POST", "/api/submit/khong-ton-tai", map[string]interface{}{}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var n int64
	db.Model(&models.Response{}).Count(&n)
	assert.Zero(t, n)
}

func TestSubmitStoresAnswersAndBroadcasts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Khảo sát", "khao-sat", models.FormStatusPublished)
	qText := testutil.SeedQuestion(t, db, f.ID, models.QuestionShortText, "Tên?", 0)
	qMulti := testutil.SeedQuestion(t, db, f.ID, models.QuestionMultipleChoice, "Chọn", 1, "A", "B", "C")
	qRating := testutil.SeedQuestion(t, db, f.ID, models.QuestionRating, "Điểm", 2)

	events, cancel := config.Live.Subscribe(f.ID)
	defer cancel()

	w := testutil.DoRequest(r, "POST", "/api/submit/khao-sat", map[string]interface{}{
		"source": "qr",
		"answers": []interface{}{
			map[string]interface{}{"questionId": qText.ID, "answer": "An"},
			map[string]interface{}{"questionId": qMulti.ID, "answer": []string{"A", "C"}},
			map[string]interface{}{"questionId": qRating.ID, "answer": 4},
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	responseID := testutil.ParseResponse(w)["response_id"].(string)

	var resp models.Response
	require.NoError(t, db.Preload("Answers").First(&resp, "id = ?", responseID).Error)
	assert.Equal(t, models.SourceQR, resp.Source)
	values := map[string]string{}
	for _, a := range resp.Answers {
		values[a.QuestionID] = a.Value
	}
	assert.Equal(t, "An", values[qText.ID])
	assert.Equal(t, `["A","C"]`, values[qMulti.ID])
	assert.Equal(t, "4", values[qRating.ID])

	select {
	case e := <-events:
		assert.Equal(t, live.EventResponse, e.Type)
		assert.Equal(t, responseID, e.ResponseID)
		assert.Equal(t, models.SourceQR, e.Source)
	case <-time.After(time.Second):
		t.Fatal("no live event")
	}
}

func TestSubmitValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Khảo sát", "khao-sat", models.FormStatusPublished)
	q := testutil.SeedQuestion(t, db, f.ID, models.QuestionShortText, "Tên?", 0)
	other := testutil.SeedForm(t, db, u.ID, "Khác", "khac", models.FormStatusPublished)
	foreign := testutil.SeedQuestion(t, db, other.ID, models.QuestionShortText, "Tuổi?", 0)

	w := testutil.DoRequest(r, "POST", "/api/submit/khao-sat", map[string]interface{}{
		"source":  "email",
		"answers": []interface{}{map[string]interface{}{"questionId": q.ID, "answer": "An"}},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(r, "POST", "/api/submit/khao-sat", map[string]interface{}{
		"answers": []interface{}{
			map[string]interface{}{"questionId": q.ID, "answer": "An"},
			map[string]interface{}{"questionId": foreign.ID, "answer": "30"},
		},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoRequest(r, "POST", "/api/submit/khao-sat", map[string]interface{}{
		"answers": []interface{}{map[string]interface{}{"questionId": q.ID, "answer": map[string]string{"a": "b"}}},
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var n int64
	db.Model(&models.Response{}).Count(&n)
	assert.Zero(t, n)

	// source mặc định là web
	w = testutil.DoRequest(r, "POST", "/api/submit/khao-sat", map[string]interface{}{
		"answers": []interface{}{map[string]interface{}{"questionId": q.ID, "answer": nil}},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.Response
	require.NoError(t, db.Preload("Answers").First(&resp).Error)
	assert.Equal(t, models.SourceWeb, resp.Source)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "", resp.Answers[0].Value)
}

func TestPublicFormPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Khảo sát <b>mẫu</b>", "khao-sat-mau", models.FormStatusPublished)
	testutil.SeedQuestion(t, db, f.ID, models.QuestionSingleChoice, "Màu yêu thích?", 0, "Đỏ", "Xanh")
	testutil.SeedForm(t, db, u.ID, "Nháp", "nhap", models.FormStatusDraft)

	w := testutil.DoRequest(r, "GET", "/f/khao-sat-mau?source=qr", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Màu yêu thích?")
	assert.Contains(t, body, "Xanh")
	assert.Contains(t, body, "/api/submit/")
	assert.Contains(t, body, `"khao-sat-mau"`)
	assert.Contains(t, body, `"qr"`)
	assert.NotContains(t, body, "<b>mẫu</b>")

	w = testutil.DoRequest(r, "GET", "/f/nhap", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.DoRequest(r, "GET", "/f/khong-co", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPublicForm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Khảo sát", "khao-sat", models.FormStatusPublished)
	testutil.SeedQuestion(t, db, f.ID, models.QuestionRating, "Điểm", 0)

	w := testutil.DoRequest(r, "GET", "/api/public/forms/khao-sat", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := testutil.ParseResponse(w)
	assert.Equal(t, "Khảo sát", resp["title"])
	assert.Len(t, resp["questions"], 1)
	assert.NotContains(t, resp, "user_id")
	assert.NotContains(t, resp, "status")
}
