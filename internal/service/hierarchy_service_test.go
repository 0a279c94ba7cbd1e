package service

import (
	"context"
	"testing"

	"github.com/igor-spalenza/GesN-sub003/internal/apierror"
	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchyCreate_NameUniqueCaseInsensitive(t *testing.T) {
	repo := newStubHierarchyRepo()
	svc := NewHierarchyService(repo)

	_, err := svc.Create(context.Background(), dto.CreateHierarchyRequest{Name: "Fillings"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateHierarchyRequest{Name: "FILLINGS"})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindDuplicateKey))
}

func TestHierarchyUpdate_RenameToTakenNameRejected(t *testing.T) {
	repo := newStubHierarchyRepo()
	svc := NewHierarchyService(repo)

	repo.add(&model.ProductComponentHierarchy{Name: "Fillings", Active: true})
	target := repo.add(&model.ProductComponentHierarchy{Name: "Toppings", Active: true})

	taken := "fillings"
	_, err := svc.Update(context.Background(), target.ID, dto.UpdateHierarchyRequest{Name: &taken})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindDuplicateKey))

	// Renaming to itself with different casing is fine.
	self := "TOPPINGS"
	_, err = svc.Update(context.Background(), target.ID, dto.UpdateHierarchyRequest{Name: &self})
	require.NoError(t, err)
}

func TestHierarchyDeactivate_Idempotent(t *testing.T) {
	repo := newStubHierarchyRepo()
	svc := NewHierarchyService(repo)

	h := repo.add(&model.ProductComponentHierarchy{Name: "Decorations", Active: true, LastModifiedBy: "alice"})

	require.NoError(t, svc.Deactivate(context.Background(), h.ID))
	assert.False(t, repo.hierarchies[h.ID].Active)
	firstStamp := repo.hierarchies[h.ID].LastModifiedAt

	// Second call is a no-op: no error, no re-stamp.
	require.NoError(t, svc.Deactivate(context.Background(), h.ID))
	assert.Equal(t, firstStamp, repo.hierarchies[h.ID].LastModifiedAt)
}

func TestHierarchyDelete_RefusedWhileAttached(t *testing.T) {
	repo := newStubHierarchyRepo()
	svc := NewHierarchyService(repo)

	h := repo.add(&model.ProductComponentHierarchy{Name: "Bases", Active: true})
	repo.relationRefs[h.ID] = 3

	err := svc.Delete(context.Background(), h.ID)
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))

	repo.relationRefs[h.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), h.ID))
}

func TestHierarchyAddComponent(t *testing.T) {
	repo := newStubHierarchyRepo()
	svc := NewHierarchyService(repo)

	h := repo.add(&model.ProductComponentHierarchy{Name: "Fillings", Active: true})

	resp, err := svc.AddComponent(context.Background(), h.ID, dto.CreateComponentRequest{Name: "Dulce de leche"})
	require.NoError(t, err)
	assert.Equal(t, "Dulce de leche", resp.Name)
	assert.True(t, resp.Active)

	list, err := svc.ListComponents(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
