package controllers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/testutil"
)

type analyticsFixture struct {
	router  *gin.Engine
	token   string
	form    *models.Form
	choice  *models.Question
	rating  *models.Question
	comment *models.Question
}

// setupAnalytics: 3 phản hồi (2 web, 1 qr) trải trên 3 ngày, có một ngày trống.
func setupAnalytics(t *testing.T) analyticsFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	r := testutil.SetupRouter(t)
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Khảo sát mẫu", "khao-sat-mau", models.FormStatusPublished)
	choice := testutil.SeedQuestion(t, db, f.ID, models.QuestionMultipleChoice, "Kênh biết đến", 0, "Facebook", "Bạn bè", "Báo")
	rating := testutil.SeedQuestion(t, db, f.ID, models.QuestionRating, "Mức hài lòng", 1)
	comment := testutil.SeedQuestion(t, db, f.ID, models.QuestionLongText, "Góp ý", 2)

	testutil.SeedResponse(t, db, f.ID, models.SourceWeb, mustTime(t, "2025-09-01T08:00:00Z"), map[string]string{
		choice.ID: `["Facebook","Bạn bè"]`, rating.ID: "5", comment.ID: "Rất tốt",
	})
	testutil.SeedResponse(t, db, f.ID, models.SourceQR, mustTime(t, "2025-09-01T20:00:00Z"), map[string]string{
		choice.ID: `["Facebook"]`, rating.ID: "3",
	})
	testutil.SeedResponse(t, db, f.ID, models.SourceWeb, mustTime(t, "2025-09-03T09:30:00Z"), map[string]string{
		rating.ID: "4", comment.ID: "Cần cải thiện",
	})

	return analyticsFixture{
		router: r, token: testutil.TokenFor(t, u.ID), form: f,
		choice: choice, rating: rating, comment: comment,
	}
}

func (fx analyticsFixture) get(path string) *httptest.ResponseRecorder {
	return testutil.DoRequest(fx.router, "GET", "/api/forms/"+fx.form.ID+path, nil, fx.token)
}

func TestAnalyticsSummary(t *testing.T) {
	fx := setupAnalytics(t)

	w := fx.get("/analytics/summary")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := testutil.ParseResponse(w)["summary"].(map[string]interface{})
	assert.EqualValues(t, 3, summary["total"])
	assert.EqualValues(t, 1, summary["qr"])
	assert.EqualValues(t, 2, summary["web"])

	w = fx.get("/analytics/summary?source=qr")
	summary = testutil.ParseResponse(w)["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["total"])

	w = fx.get("/analytics/summary?startDate=2025-09-02&endDate=2025-09-03")
	summary = testutil.ParseResponse(w)["summary"].(map[string]interface{})
	assert.EqualValues(t, 1, summary["total"])

	for _, q := range []string{"?startDate=09/01/2025", "?source=email", "?startDate=2025-09-05&endDate=2025-09-01"} {
		w = fx.get("/analytics/summary" + q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestQuestionAnalytics(t *testing.T) {
	fx := setupAnalytics(t)

	w := fx.get("/analytics/questions")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	questions := testutil.ParseResponse(w)["questions"].([]interface{})
	require.Len(t, questions, 3)

	choice := questions[0].(map[string]interface{})
	assert.Equal(t, fx.choice.ID, choice["question_id"])
	assert.EqualValues(t, 2, choice["total_responses"])
	assert.Equal(t, map[string]interface{}{"Facebook": float64(2), "Bạn bè": float64(1)}, choice["distribution"])
	assert.Equal(t, []interface{}{"Facebook", "Bạn bè", "Báo"}, choice["options"])

	rating := questions[1].(map[string]interface{})
	assert.EqualValues(t, 3, rating["total_responses"])
	assert.InDelta(t, 4.0, rating["average"], 1e-9)

	comment := questions[2].(map[string]interface{})
	assert.Equal(t, []interface{}{"Rất tốt", "Cần cải thiện"}, comment["text_responses"])

	// khoảng ngày không có phản hồi: phân phối rỗng nhưng vẫn đủ câu hỏi
	w = fx.get("/analytics/questions?startDate=2025-10-01&endDate=2025-10-02")
	require.Equal(t, http.StatusOK, w.Code)
	questions = testutil.ParseResponse(w)["questions"].([]interface{})
	require.Len(t, questions, 3)
	assert.Equal(t, map[string]interface{}{}, questions[0].(map[string]interface{})["distribution"])
	assert.EqualValues(t, 0, questions[0].(map[string]interface{})["total_responses"])
}

func TestAnalyticsTrends(t *testing.T) {
	fx := setupAnalytics(t)

	w := fx.get("/analytics/trends")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	trends := testutil.ParseResponse(w)["trends"].([]interface{})
	require.Len(t, trends, 3)

	day1 := trends[0].(map[string]interface{})
	assert.Equal(t, "2025-09-01", day1["date"])
	assert.EqualValues(t, 1, day1["qr"])
	assert.EqualValues(t, 1, day1["web"])
	assert.EqualValues(t, 2, day1["total"])

	day2 := trends[1].(map[string]interface{})
	assert.Equal(t, "2025-09-02", day2["date"])
	assert.EqualValues(t, 0, day2["total"])

	w = fx.get("/analytics/trends?startDate=2000-01-01&endDate=2025-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetResponsesPaginates(t *testing.T) {
	fx := setupAnalytics(t)

	w := fx.get("/responses?page=1&limit=2")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.ParseResponse(w)
	assert.EqualValues(t, 3, resp["total"])
	rows := resp["responses"].([]interface{})
	require.Len(t, rows, 2)
	newest := rows[0].(map[string]interface{})
	answers := newest["answers"].(map[string]interface{})
	assert.Equal(t, "Cần cải thiện", answers[fx.comment.ID])

	w = fx.get("/responses?page=2&limit=2")
	rows = testutil.ParseResponse(w)["responses"].([]interface{})
	require.Len(t, rows, 1)
	oldest := rows[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"Facebook", "Bạn bè"}, oldest["answers"].(map[string]interface{})[fx.choice.ID])
}

func TestExportResponses(t *testing.T) {
	fx := setupAnalytics(t)

	w := fx.get("/export?source=web")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "khao-sat-mau_responses.xlsx")

	x, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer x.Close()
	rows, err := x.GetRows("Responses")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Thời gian (UTC)", "Nguồn", "Kênh biết đến", "Mức hài lòng", "Góp ý"}, rows[0])
	assert.Equal(t, "Facebook, Bạn bè", rows[1][2])
}

func TestQRCodePDF(t *testing.T) {
	fx := setupAnalytics(t)

	w := fx.get("/qr-pdf")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func uploadLogo(t *testing.T, fx analyticsFixture, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/forms/"+fx.form.ID+"/branding/logo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+fx.token)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUploadLogoReplacesPrevious(t *testing.T) {
	fx := setupAnalytics(t)
	blob := testutil.Blob(t)

	w := uploadLogo(t, fx, "logo.png", pngHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := testutil.ParseResponse(w)["settings"].(map[string]interface{})["branding"].(map[string]interface{})["logo_path"].(string)
	assert.True(t, strings.HasPrefix(first, "logos/"+fx.form.ID+"/"))
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.Contains(t, blob.Objects, first)

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="1" height="1"></svg>`)
	w = uploadLogo(t, fx, "logo.svg", svg)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, blob.Objects, first)
	assert.Contains(t, blob.Deleted, first)

	w = uploadLogo(t, fx, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = uploadLogo(t, fx, "big.png", append(pngHeader, make([]byte, 2<<20)...))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = testutil.DoRequest(fx.router, "DELETE", "/api/forms/"+fx.form.ID+"/branding/logo", nil, fx.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, blob.Objects)
}
