package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/form-server/models"
	"github.com/vnkhanh/form-server/repository"
	"github.com/vnkhanh/form-server/testutil"
)

func TestFormCreateRetriesSlugCollision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	testutil.SeedForm(t, db, u.ID, "Taken", "taken", models.FormStatusDraft)

	slugs := []string{"taken", "taken", "fresh"}
	calls := 0
	f := &models.Form{UserID: u.ID, Title: "Mới"}
	err := repository.NewFormRepository(db).Create(ctx, f, func() string {
		s := slugs[calls]
		calls++
		return s
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", f.Slug)
	assert.Equal(t, 3, calls)
	assert.Equal(t, models.FormStatusDraft, f.Status)
	assert.Equal(t, "light", f.Settings.Data().Theme)

	err = repository.NewFormRepository(db).Create(ctx, &models.Form{UserID: u.ID, Title: "x"}, func() string { return "taken" })
	assert.True(t, errors.Is(err, repository.ErrSlugTaken))
}

func TestFormCreateConcurrentSameSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	forms := repository.NewFormRepository(db)

	const n = 4
	slugs := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			attempt := 0
			f := &models.Form{UserID: u.ID, Title: "Trùng"}
			err := forms.Create(ctx, f, func() string {
				attempt++
				if attempt == 1 {
					return "trung"
				}
				return fmt.Sprintf("trung-%d", i)
			})
			errs <- err
			slugs <- f.Slug
		}(i)
	}
	wg.Wait()
	close(errs)
	close(slugs)

	for err := range errs {
		require.NoError(t, err)
	}
	seen := map[string]bool{}
	for s := range slugs {
		assert.False(t, seen[s], s)
		seen[s] = true
	}
	assert.True(t, seen["trung"])

	var count int64
	db.Model(&models.Form{}).Count(&count)
	assert.EqualValues(t, n, count)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedUser(t, db, "an@example.com", "secret1")

	err := repository.NewUserRepository(db).Create(context.Background(), &models.User{Email: " AN@example.com "})
	assert.True(t, errors.Is(err, repository.ErrEmailTaken))
}

func TestFindPublishedBySlugHidesDrafts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	testutil.SeedForm(t, db, u.ID, "Nháp", "nhap", models.FormStatusDraft)
	pub := testutil.SeedForm(t, db, u.ID, "Công khai", "cong-khai", models.FormStatusPublished)

	forms := repository.NewFormRepository(db)
	_, err := forms.FindPublishedBySlug(ctx, "nhap")
	assert.True(t, repository.IsNotFound(err))

	f, err := forms.FindPublishedBySlug(ctx, "cong-khai")
	require.NoError(t, err)
	assert.Equal(t, pub.ID, f.ID)
}

func TestSubmitIsAtomic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Form", "form", models.FormStatusPublished)
	q := testutil.SeedQuestion(t, db, f.ID, models.QuestionShortText, "Tên?", 0)
	other := testutil.SeedForm(t, db, u.ID, "Khác", "khac", models.FormStatusPublished)
	foreign := testutil.SeedQuestion(t, db, other.ID, models.QuestionShortText, "Tuổi?", 0)

	responses := repository.NewResponseRepository(db)
	_, err := responses.Submit(ctx, f.ID, models.SourceWeb, []models.Answer{
		{QuestionID: q.ID, Value: "An"},
		{QuestionID: foreign.ID, Value: "30"},
	})
	assert.True(t, errors.Is(err, repository.ErrUnknownQuestion))

	var n int64
	db.Model(&models.Response{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Answer{}).Count(&n)
	assert.Zero(t, n)

	resp, err := responses.Submit(ctx, f.ID, models.SourceQR, []models.Answer{{QuestionID: q.ID, Value: "An"}})
	require.NoError(t, err)
	assert.Equal(t, models.SourceQR, resp.Source)

	list, err := responses.ListWithAnswers(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Answers, 1)
	assert.Equal(t, "An", list[0].Answers[0].Value)
}

func TestContentRepositoryDeleteSectionDetachesQuestions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Form", "form", models.FormStatusDraft)

	content := repository.NewContentRepository(db)
	s := &models.Section{FormID: f.ID, Title: "Phần 1"}
	require.NoError(t, content.CreateSection(ctx, s))
	q := &models.Question{FormID: f.ID, SectionID: &s.ID, Type: models.QuestionShortText, Text: "Tên?"}
	require.NoError(t, content.CreateQuestion(ctx, q))

	require.NoError(t, content.DeleteSection(ctx, s.ID))

	qs, err := content.ListQuestions(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Nil(t, qs[0].SectionID)

	next, err := content.NextQuestionOrder(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestListByUserCountsResponses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "owner@example.com", "secret1")
	f := testutil.SeedForm(t, db, u.ID, "Form", "form", models.FormStatusPublished)
	empty := testutil.SeedForm(t, db, u.ID, "Trống", "trong", models.FormStatusDraft)
	q := testutil.SeedQuestion(t, db, f.ID, models.QuestionShortText, "Tên?", 0)
	for i := 0; i < 2; i++ {
		testutil.SeedResponse(t, db, f.ID, models.SourceWeb, time.Now(), map[string]string{q.ID: "x"})
	}

	list, err := repository.NewFormRepository(db).ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	counts := map[string]int64{}
	for _, s := range list {
		counts[s.ID] = s.ResponseCount
	}
	assert.Equal(t, int64(2), counts[f.ID])
	assert.Equal(t, int64(0), counts[empty.ID])
}
