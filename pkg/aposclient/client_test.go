package aposclient_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/aposclient/apostest"
	"github.com/tendant/cms-check/pkg/lifecycle"
)

func newTestClient(t *testing.T) (*aposclient.Client, *apostest.Server) {
	t.Helper()
	srv := apostest.NewServer()
	t.Cleanup(srv.Close)
	return aposclient.New(srv.URL(), aposclient.WithAPIKey("test-key")), srv
}

func TestLoginWhoAmILogout(t *testing.T) {
	srv := apostest.NewServer()
	defer srv.Close()
	ctx := context.Background()

	c := aposclient.New(srv.URL())

	_, err := c.WhoAmI(ctx)
	assert.ErrorIs(t, err, aposclient.ErrNoSession)

	err = c.Login(ctx, apostest.DefaultUsername, "wrong")
	assert.ErrorIs(t, err, aposclient.ErrLoginFailed)

	require.NoError(t, c.Login(ctx, apostest.DefaultUsername, apostest.DefaultPassword))

	who, err := c.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Equal(t, apostest.DefaultUsername, who.Username)

	require.NoError(t, c.Logout(ctx))
}

func TestContentEndpointsRequireAuth(t *testing.T) {
	srv := apostest.NewServer()
	defer srv.Close()
	ctx := context.Background()

	c := aposclient.New(srv.URL())

	_, err := c.CreatePiece(ctx, lifecycle.KindImageTag, map[string]interface{}{"title": "nope"})
	require.Error(t, err)
	var apiErr *aposclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = c.GetPage(ctx, "_home")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestPieceCRUD(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	doc, err := c.CreatePiece(ctx, lifecycle.KindImageTag, map[string]interface{}{
		"title": "landscape",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.NotEmpty(t, doc.DocID)
	assert.True(t, strings.HasPrefix(doc.ID, doc.DocID), "compound id starts with the stable doc id")
	assert.Equal(t, "landscape", doc.Title)

	got, err := c.GetPiece(ctx, lifecycle.KindImageTag, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.DocID, got.DocID)

	updated, err := c.UpdatePiece(ctx, lifecycle.KindImageTag, doc.ID, map[string]interface{}{
		"title": "seascape",
	})
	require.NoError(t, err)
	assert.Equal(t, "seascape", updated.Title)

	archived, err := c.ArchivePiece(ctx, lifecycle.KindImageTag, doc.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	restored, err := c.RestorePiece(ctx, lifecycle.KindImageTag, doc.ID)
	require.NoError(t, err)
	assert.False(t, restored.Archived)

	require.NoError(t, c.DeletePiece(ctx, lifecycle.KindImageTag, doc.ID))
	assert.False(t, srv.Has(doc.ID))

	_, err = c.GetPiece(ctx, lifecycle.KindImageTag, doc.ID)
	assert.True(t, aposclient.IsNotFound(err))
}

func TestPublishedDocRefusesDelete(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	doc, err := c.CreatePiece(ctx, lifecycle.KindImage, map[string]interface{}{"title": "photo"})
	require.NoError(t, err)
	require.NoError(t, c.PublishPiece(ctx, lifecycle.KindImage, doc.ID))

	err = c.DeletePiece(ctx, lifecycle.KindImage, doc.ID)
	require.Error(t, err)
	assert.False(t, aposclient.IsNotFound(err), "conflict is not absence")
	assert.True(t, srv.Has(doc.ID))

	require.NoError(t, c.UnpublishPiece(ctx, lifecycle.KindImage, doc.ID))
	require.NoError(t, c.DeletePiece(ctx, lifecycle.KindImage, doc.ID))
	assert.False(t, srv.Has(doc.ID))
}

func TestRetirePublishedDoc(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	doc, err := c.CreatePiece(ctx, lifecycle.KindFile, map[string]interface{}{"title": "report"})
	require.NoError(t, err)
	require.NoError(t, c.PublishPiece(ctx, lifecycle.KindFile, doc.ID))

	publishedID := doc.DocID + ":en:" + lifecycle.ModePublished
	ref := lifecycle.ContentRef{RawID: publishedID, Kind: lifecycle.KindFile}

	res, err := c.Retire(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, res.Outcome)
	assert.False(t, srv.Has(doc.ID))

	// Second retirement confirms absence rather than erroring.
	res, err = c.Retire(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeAlreadyAbsent, res.Outcome)
}

func TestRetireUsesDocIDFirst(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	doc, err := c.CreatePiece(ctx, lifecycle.KindUser, map[string]interface{}{
		"title":    "Test User",
		"username": "tester",
	})
	require.NoError(t, err)

	ref := lifecycle.ContentRef{
		RawID: doc.ID,
		DocID: doc.DocID,
		Kind:  lifecycle.KindUser,
	}
	res, err := c.Retire(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeDeleted, res.Outcome)

	calls := srv.DeleteCalls()
	require.NotEmpty(t, calls)
	assert.Equal(t, doc.DocID, calls[0])
}

func TestPages(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	home, err := c.GetPage(ctx, "_home")
	require.NoError(t, err)
	require.NotEmpty(t, home.ID)

	page, err := c.InsertPage(ctx, home.ID, "lastChild", map[string]interface{}{
		"title": "About",
		"slug":  "/about",
	})
	require.NoError(t, err)
	assert.Equal(t, "About", page.Title)

	moved, err := c.MovePage(ctx, page.ID, home.ID, "firstChild")
	require.NoError(t, err)
	assert.Equal(t, page.DocID, moved.DocID)

	res, err := c.Retire(ctx, lifecycle.ContentRef{RawID: page.ID, DocID: page.DocID, Kind: lifecycle.KindPage})
	require.NoError(t, err)
	assert.True(t, res.Retired())
}

func TestGlobalReadAndPatch(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	g, err := c.GetGlobal(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, g.ID)

	patched, err := c.PatchGlobal(ctx, g.ID, map[string]interface{}{"title": "Site Settings"})
	require.NoError(t, err)
	assert.Equal(t, "Site Settings", patched.Title)
}
