package project

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusCatalog(t *testing.T) {
	ids := []string{}
	for _, s := range Statuses() {
		ids = append(ids, s.ID)
		require.NotEmpty(t, s.Name)
		require.NotEmpty(t, s.Color)
	}
	require.Equal(t, []string{
		StatusPlanning, StatusDevelopment, StatusTesting,
		StatusDeployment, StatusCompleted, StatusOnHold,
	}, ids)
	require.Equal(t, StatusPlanning, DefaultStatus().ID)

	_, ok := StatusByID("archived")
	require.False(t, ok)
}

func TestCatalogCopiesAreIndependent(t *testing.T) {
	statuses := Statuses()
	statuses[0].Name = "changed"
	require.NotEqual(t, "changed", Statuses()[0].Name)

	techs := TechStacks()
	techs[0].ID = "changed"
	require.NotEqual(t, "changed", TechStacks()[0].ID)
}

func TestTechCatalogUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, tech := range TechStacks() {
		require.False(t, seen[tech.ID], "duplicate tech id %s", tech.ID)
		seen[tech.ID] = true
	}
}

func TestResolveTech(t *testing.T) {
	resolved := ResolveTech([]string{"python", "nope", " python", "docker"})
	require.Len(t, resolved, 2)
	require.Equal(t, "python", resolved[0].ID)
	require.Equal(t, "docker", resolved[1].ID)

	require.Empty(t, ResolveTech(nil))
	require.NotNil(t, ResolveTech(nil))
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	require.Equal(t, PriorityMedium, p)

	p, err = ParsePriority(" Critical ")
	require.NoError(t, err)
	require.Equal(t, PriorityCritical, p)

	_, err = ParsePriority("urgent")
	require.ErrorIs(t, err, ErrUnknownPriority)
}
