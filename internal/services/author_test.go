package services

import (
	"context"
	"testing"
	"time"

	"blogsite/internal/models"
	"blogsite/internal/reqctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestAuthorService(repo *mockAuthorRepo, c *mockCache) *authorService {
	s := NewAuthorService(repo, c).(*authorService)
	s.now = func() time.Time { return testNow }
	return s
}

func timep(t time.Time) *time.Time { return &t }

func TestAuthorService_CreateIsDraft(t *testing.T) {
	repo := newMockAuthorRepo()
	svc := newTestAuthorService(repo, newMockCache())

	a, err := svc.Create(context.Background(), models.AuthorRequest{Name: "  Jane  "})
	require.NoError(t, err)
	assert.Equal(t, "Jane", a.Name)
	assert.False(t, a.Live)

	_, err = svc.GetLive(context.Background(), a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorService_Validation(t *testing.T) {
	svc := newTestAuthorService(newMockAuthorRepo(), newMockCache())

	_, err := svc.Create(context.Background(), models.AuthorRequest{
		GoLiveAt: timep(testNow.Add(2 * time.Hour)),
		ExpireAt: timep(testNow.Add(time.Hour)),
	})
	require.Error(t, err)
	fields := fieldErrors(t, err)
	assert.Contains(t, fields, "name")
	assert.Equal(t, MsgGoLiveAfterExp, fields["go_live_at"].Error())

	_, err = svc.Create(context.Background(), models.AuthorRequest{Name: "Jane", ExpireAt: timep(testNow.Add(-time.Hour))})
	assert.Equal(t, MsgExpireInPast, fieldMsg(t, err, "expire_at"))
}

func TestAuthorService_PublishAndUnpublish(t *testing.T) {
	repo := newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane"})
	c := newMockCache()
	svc := newTestAuthorService(repo, c)
	ctx := context.Background()

	a, err := svc.Publish(ctx, 1)
	require.NoError(t, err)
	assert.True(t, a.Live)
	assert.Equal(t, 1, c.clears)

	a, err = svc.Unpublish(ctx, 1)
	require.NoError(t, err)
	assert.False(t, a.Live)
	assert.Equal(t, 2, c.clears)
}

func TestAuthorService_PublishWithFutureGoLiveIsScheduled(t *testing.T) {
	repo := newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane", GoLiveAt: timep(testNow.Add(time.Hour))})
	svc := newTestAuthorService(repo, newMockCache())

	a, err := svc.Publish(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, a.Live)
	assert.True(t, a.Scheduled)
	assert.NotNil(t, a.GoLiveAt)
}

func TestAuthorService_ApplySchedule(t *testing.T) {
	repo := newMockAuthorRepo(
		&models.Author{ID: 1, Name: "Due", GoLiveAt: timep(testNow.Add(time.Hour))},
		&models.Author{ID: 2, Name: "Later", GoLiveAt: timep(testNow.Add(3 * time.Hour))},
		&models.Author{ID: 3, Name: "Expiring", Live: true, ExpireAt: timep(testNow.Add(90 * time.Minute))},
	)
	c := newMockCache()
	svc := newTestAuthorService(repo, c)
	ctx := context.Background()

	_, err := svc.Publish(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Publish(ctx, 2)
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	published, expired, err := svc.ApplySchedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, published)
	assert.Equal(t, []int64{3}, expired)
	assert.Equal(t, 1, c.clears)

	assert.True(t, repo.authors[1].Live)
	assert.False(t, repo.authors[1].Scheduled)
	assert.False(t, repo.authors[2].Live)
	assert.True(t, repo.authors[2].Scheduled)
	assert.True(t, repo.authors[3].Expired)
}

func TestAuthorService_ApplyScheduleSkipsUnapprovedDraft(t *testing.T) {
	svc := newTestAuthorService(newMockAuthorRepo(), newMockCache())
	ctx := context.Background()

	a, err := svc.Create(ctx, models.AuthorRequest{Name: "Draft", GoLiveAt: timep(testNow.Add(time.Hour))})
	require.NoError(t, err)
	assert.False(t, a.Scheduled)

	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	published, _, err := svc.ApplySchedule(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	_, err = svc.GetLive(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorService_UnpublishCancelsSchedule(t *testing.T) {
	repo := newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane", GoLiveAt: timep(testNow.Add(time.Hour))})
	svc := newTestAuthorService(repo, newMockCache())
	ctx := context.Background()

	a, err := svc.Publish(ctx, 1)
	require.NoError(t, err)
	require.True(t, a.Scheduled)

	a, err = svc.Unpublish(ctx, 1)
	require.NoError(t, err)
	assert.False(t, a.Scheduled)

	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	published, _, err := svc.ApplySchedule(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)
	assert.False(t, repo.authors[1].Live)
}

func TestAuthorService_ScheduledPublishUsesApprovedContent(t *testing.T) {
	repo := newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane", GoLiveAt: timep(testNow.Add(time.Hour))})
	svc := newTestAuthorService(repo, newMockCache())
	ctx := context.Background()

	_, err := svc.Publish(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Update(ctx, 1, models.AuthorRequest{Name: "Janet", GoLiveAt: timep(testNow.Add(time.Hour))})
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	_, _, err = svc.ApplySchedule(ctx)
	require.NoError(t, err)

	live, err := svc.GetLive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Jane", live.Name)
	assert.True(t, live.HasUnpublishedChanges)
}

func TestAuthorService_LiveEditStaysDraft(t *testing.T) {
	repo := newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane"})
	svc := newTestAuthorService(repo, newMockCache())
	ctx := context.Background()

	_, err := svc.Publish(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Update(ctx, 1, models.AuthorRequest{Name: "Janet"})
	require.NoError(t, err)

	live, err := svc.GetLive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Jane", live.Name)

	_, err = svc.Publish(ctx, 1)
	require.NoError(t, err)
	live, err = svc.GetLive(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Janet", live.Name)
}

func TestAuthorService_ApplyScheduleNothingDue(t *testing.T) {
	c := newMockCache()
	svc := newTestAuthorService(newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane"}), c)

	published, expired, err := svc.ApplySchedule(context.Background())
	require.NoError(t, err)
	assert.Empty(t, published)
	assert.Empty(t, expired)
	assert.Zero(t, c.clears)
}

func TestAuthorService_Locking(t *testing.T) {
	repo := newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane"})
	svc := newTestAuthorService(repo, newMockCache())
	ctx := context.Background()

	a, err := svc.Lock(ctx, 1, "alice")
	require.NoError(t, err)
	assert.True(t, a.Locked)
	assert.Equal(t, "alice", *a.LockedBy)

	_, err = svc.Lock(ctx, 1, "bob")
	assert.ErrorIs(t, err, ErrLocked)

	bob := reqctx.WithEditor(ctx, "bob")
	_, err = svc.Update(bob, 1, models.AuthorRequest{Name: "Janet"})
	assert.ErrorIs(t, err, ErrLocked)
	assert.ErrorIs(t, svc.Delete(bob, 1), ErrLocked)
	_, err = svc.Unlock(bob, 1, "bob")
	assert.ErrorIs(t, err, ErrLocked)

	alice := reqctx.WithEditor(ctx, "alice")
	a, err = svc.Update(alice, 1, models.AuthorRequest{Name: "Janet"})
	require.NoError(t, err)
	assert.Equal(t, "Janet", a.Name)
	assert.True(t, a.HasUnpublishedChanges)

	a, err = svc.Unlock(alice, 1, "alice")
	require.NoError(t, err)
	assert.False(t, a.Locked)
	assert.Nil(t, a.LockedBy)
}

func TestAuthorService_LockRequiresEditor(t *testing.T) {
	svc := newTestAuthorService(newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane"}), newMockCache())

	_, err := svc.Lock(context.Background(), 1, " ")
	assert.Contains(t, fieldErrors(t, err), "editor")
}

func TestAuthorService_Preview(t *testing.T) {
	svc := newTestAuthorService(newMockAuthorRepo(&models.Author{ID: 1, Name: "Jane"}), newMockCache())
	ctx := context.Background()

	p, err := svc.Preview(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "blogpages/author_preview.html", p.Template)

	p, err = svc.Preview(ctx, 1, "dark")
	require.NoError(t, err)
	assert.Equal(t, "blogpages/author_preview_dark.html", p.Template)
	assert.Equal(t, "Jane", p.Author.Name)

	_, err = svc.Preview(ctx, 1, "sepia")
	assert.ErrorIs(t, err, ErrInvalidPreviewMode)

	modes := svc.PreviewModes()
	require.Len(t, modes, 2)
	assert.Equal(t, "Dark mode", modes[1].Label)
}
