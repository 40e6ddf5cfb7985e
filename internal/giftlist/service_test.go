// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package giftlist_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftme/giftme/internal/giftlist"
	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/pkg/pagination"
	"github.com/giftme/giftme/pkg/pointer"
	"github.com/giftme/giftme/pkg/uuidv7"
)

// # In-Memory Fakes

type fakeLists struct {
	byID map[string]*giftlist.GiftList
}

func newFakeLists(lists ...*giftlist.GiftList) *fakeLists {
	store := &fakeLists{byID: map[string]*giftlist.GiftList{}}
	for _, list := range lists {
		store.byID[list.ID] = list
	}
	return store
}

func (f *fakeLists) Create(_ context.Context, list *giftlist.GiftList) error {
	f.byID[list.ID] = list
	return nil
}

func (f *fakeLists) Read(_ context.Context, id string) (*giftlist.GiftList, error) {
	list, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Gift list")
	}
	copied := *list
	return &copied, nil
}

func (f *fakeLists) Update(_ context.Context, list *giftlist.GiftList) error {
	if _, ok := f.byID[list.ID]; !ok {
		return apperr.NotFound("Gift list")
	}
	f.byID[list.ID] = list
	return nil
}

func (f *fakeLists) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeLists) ListByAccount(_ context.Context, accountID string, _ pagination.Params) ([]*giftlist.GiftList, int, error) {
	owned := []*giftlist.GiftList{}
	for _, list := range f.byID {
		if list.AccountID == accountID {
			owned = append(owned, list)
		}
	}
	return owned, len(owned), nil
}

func (f *fakeLists) DeleteByAccount(_ context.Context, accountID string) error {
	for id, list := range f.byID {
		if list.AccountID == accountID {
			delete(f.byID, id)
		}
	}
	return nil
}

type fakeIdeas struct {
	byID  map[string]*giftlist.GiftIdea
	lists *fakeLists
}

func newFakeIdeas(lists *fakeLists, ideas ...*giftlist.GiftIdea) *fakeIdeas {
	store := &fakeIdeas{byID: map[string]*giftlist.GiftIdea{}, lists: lists}
	for _, idea := range ideas {
		store.byID[idea.ID] = idea
	}
	return store
}

func (f *fakeIdeas) Create(_ context.Context, idea *giftlist.GiftIdea) error {
	f.byID[idea.ID] = idea
	return nil
}

func (f *fakeIdeas) Read(_ context.Context, id string) (*giftlist.GiftIdea, error) {
	idea, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Gift idea")
	}
	copied := *idea
	return &copied, nil
}

func (f *fakeIdeas) Update(_ context.Context, idea *giftlist.GiftIdea) error {
	if _, ok := f.byID[idea.ID]; !ok {
		return apperr.NotFound("Gift idea")
	}
	f.byID[idea.ID] = idea
	return nil
}

func (f *fakeIdeas) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeIdeas) ListByList(_ context.Context, listID string) ([]*giftlist.GiftIdea, error) {
	onList := []*giftlist.GiftIdea{}
	for _, idea := range f.byID {
		if idea.ListID == listID {
			onList = append(onList, idea)
		}
	}
	return onList, nil
}

func (f *fakeIdeas) DeleteByList(_ context.Context, listID string) error {
	for id, idea := range f.byID {
		if idea.ListID == listID {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeIdeas) DeleteByAccount(_ context.Context, accountID string) error {
	for id, idea := range f.byID {
		list, ok := f.lists.byID[idea.ListID]
		if ok && list.AccountID == accountID {
			delete(f.byID, id)
		}
	}
	return nil
}

// # Fixtures

const (
	ownerID    = "owner-account"
	strangerID = "stranger-account"
)

func seededService() (*giftlist.Service, *fakeLists, *fakeIdeas, *giftlist.GiftList, *giftlist.GiftIdea) {
	list := &giftlist.GiftList{
		ID:        uuidv7.New(),
		AccountID: ownerID,
		Title:     "Birthday",
	}
	idea := &giftlist.GiftIdea{
		ID:     uuidv7.New(),
		ListID: list.ID,
		Name:   "Lego set",
	}

	lists := newFakeLists(list)
	ideas := newFakeIdeas(lists, idea)
	return giftlist.NewService(lists, ideas), lists, ideas, list, idea
}

/*
TestCreateList verifies creation and title validation.
*/
func TestCreateList(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service, lists, _, _, _ := seededService()

		created, err := service.CreateList(context.Background(), ownerID, giftlist.ListInput{
			Title:       "Christmas",
			Description: pointer.To("Family exchange"),
		})
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, ownerID, created.AccountID)
		assert.Contains(t, lists.byID, created.ID)
	})

	t.Run("validation", func(t *testing.T) {
		service, _, _, _, _ := seededService()

		tests := []struct {
			name  string
			title string
		}{
			{"empty_title", ""},
			{"whitespace_title", "   "},
			{"title_too_long", strings.Repeat("x", 121)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := service.CreateList(context.Background(), ownerID, giftlist.ListInput{Title: tt.title})
				require.Error(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
			})
		}
	})
}

/*
TestOwnership verifies that a foreign list is indistinguishable from a
missing one: every operation answers 404 either way.
*/
func TestOwnership(t *testing.T) {
	service, _, _, list, idea := seededService()
	ctx := context.Background()

	callers := []struct {
		name      string
		accountID string
		listID    string
	}{
		{"foreign_list", strangerID, list.ID},
		{"absent_list", ownerID, uuidv7.New()},
	}

	for _, caller := range callers {
		t.Run(caller.name, func(t *testing.T) {
			operations := map[string]error{
				"get": func() error {
					_, _, err := service.GetList(ctx, caller.accountID, caller.listID)
					return err
				}(),
				"update": func() error {
					_, err := service.UpdateList(ctx, caller.accountID, caller.listID, giftlist.ListInput{Title: "Hijack"})
					return err
				}(),
				"delete": service.DeleteList(ctx, caller.accountID, caller.listID),
				"add_idea": func() error {
					_, err := service.AddIdea(ctx, caller.accountID, caller.listID, giftlist.IdeaInput{Name: "Sneaky"})
					return err
				}(),
				"delete_idea": service.DeleteIdea(ctx, caller.accountID, caller.listID, idea.ID),
			}

			for operation, err := range operations {
				require.Error(t, err, operation)
				assert.True(t, apperr.IsNotFound(err), operation)
			}
		})
	}

	// The stranger's probing must not have altered anything.
	kept, _, err := service.GetList(ctx, ownerID, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Birthday", kept.Title)
}

/*
TestDeleteList_RemovesIdeas verifies that deleting a list also removes every
idea on it.
*/
func TestDeleteList_RemovesIdeas(t *testing.T) {
	service, lists, ideas, list, idea := seededService()

	require.NoError(t, service.DeleteList(context.Background(), ownerID, list.ID))

	assert.NotContains(t, lists.byID, list.ID)
	assert.NotContains(t, ideas.byID, idea.ID)
}

/*
TestDeleteAllLists verifies that the bulk delete removes only the caller's
lists and their ideas, and that an empty account is a no-op.
*/
func TestDeleteAllLists(t *testing.T) {
	service, lists, ideas, list, idea := seededService()
	ctx := context.Background()

	// A second account's list must survive.
	foreign := &giftlist.GiftList{ID: uuidv7.New(), AccountID: strangerID, Title: "Keep me"}
	require.NoError(t, lists.Create(ctx, foreign))

	require.NoError(t, service.DeleteAllLists(ctx, ownerID))

	assert.NotContains(t, lists.byID, list.ID)
	assert.NotContains(t, ideas.byID, idea.ID)
	assert.Contains(t, lists.byID, foreign.ID)

	// Nothing left to delete: still succeeds.
	assert.NoError(t, service.DeleteAllLists(ctx, ownerID))
}

/*
TestUpdateList verifies field replacement semantics: the input is applied as
a whole, so omitted optional fields are cleared.
*/
func TestUpdateList(t *testing.T) {
	service, _, _, list, _ := seededService()

	updated, err := service.UpdateList(context.Background(), ownerID, list.ID, giftlist.ListInput{
		Title: "Birthday 2027",
	})
	require.NoError(t, err)

	assert.Equal(t, "Birthday 2027", updated.Title)
	assert.Nil(t, updated.Description)
}

/*
TestIdeas covers the idea lifecycle against the owner's list.
*/
func TestIdeas(t *testing.T) {
	ctx := context.Background()

	t.Run("add_and_read_back", func(t *testing.T) {
		service, _, _, list, _ := seededService()

		added, err := service.AddIdea(ctx, ownerID, list.ID, giftlist.IdeaInput{
			Name:      "Board game",
			CostCents: pointer.To(int64(4999)),
		})
		require.NoError(t, err)
		assert.Equal(t, list.ID, added.ListID)

		_, onList, err := service.GetList(ctx, ownerID, list.ID)
		require.NoError(t, err)
		assert.Len(t, onList, 2)
	})

	t.Run("negative_cost_rejected", func(t *testing.T) {
		service, _, _, list, _ := seededService()

		_, err := service.AddIdea(ctx, ownerID, list.ID, giftlist.IdeaInput{
			Name:      "Board game",
			CostCents: pointer.To(int64(-1)),
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
		assert.Equal(t, "cost_cents", ae.Details[0].Field)
	})

	t.Run("update_marks_purchased", func(t *testing.T) {
		service, _, _, list, idea := seededService()

		updated, err := service.UpdateIdea(ctx, ownerID, list.ID, idea.ID, giftlist.IdeaInput{
			Name:      idea.Name,
			Purchased: true,
		})
		require.NoError(t, err)
		assert.True(t, updated.Purchased)

		// Whoever flips the flag is recorded as the purchaser.
		require.NotNil(t, updated.PurchasedBy)
		assert.Equal(t, ownerID, *updated.PurchasedBy)
	})

	t.Run("unpurchasing_clears_purchaser", func(t *testing.T) {
		service, _, _, list, idea := seededService()

		_, err := service.UpdateIdea(ctx, ownerID, list.ID, idea.ID, giftlist.IdeaInput{
			Name:      idea.Name,
			Purchased: true,
		})
		require.NoError(t, err)

		updated, err := service.UpdateIdea(ctx, ownerID, list.ID, idea.ID, giftlist.IdeaInput{
			Name:      idea.Name,
			Purchased: false,
		})
		require.NoError(t, err)
		assert.False(t, updated.Purchased)
		assert.Nil(t, updated.PurchasedBy)
	})

	t.Run("wrong_list_path_is_404", func(t *testing.T) {
		service, _, ideas, _, idea := seededService()

		// A second list owned by the same account.
		other, err := service.CreateList(ctx, ownerID, giftlist.ListInput{Title: "Other"})
		require.NoError(t, err)

		// The idea exists, but not on that list.
		_, err = service.UpdateIdea(ctx, ownerID, other.ID, idea.ID, giftlist.IdeaInput{Name: "Moved"})
		assert.True(t, apperr.IsNotFound(err))

		err = service.DeleteIdea(ctx, ownerID, other.ID, idea.ID)
		assert.True(t, apperr.IsNotFound(err))
		assert.Contains(t, ideas.byID, idea.ID)
	})
}
