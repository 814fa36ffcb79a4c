package site

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderDerivesHasContent(t *testing.T) {
	b := NewSiteStateBuilder()
	root := b.AddPage("Home", "", true, -1, "", nil)
	billing := b.AddPage("Billing", "billing", false, root, "domain", nil)
	b.AddPage("Invoices", "billing/invoices", true, billing, "", nil)
	empty := b.AddPage("Empty", "empty", false, root, "", nil)

	s := b.Build()
	require.True(t, s.HasContent(root))
	require.True(t, s.HasContent(billing))
	require.False(t, s.HasContent(empty))
}

func TestBreadcrumbsExcludeRootAndCurrent(t *testing.T) {
	b := NewSiteStateBuilder()
	root := b.AddPage("Home", "", true, -1, "", nil)
	a := b.AddPage("A", "a", true, root, "", nil)
	b.AddPage("B", "a/b", true, a, "", nil)

	s := b.Build()
	crumbs := s.GetBreadcrumbs("a/b")
	require.Equal(t, []BreadcrumbItem{{Title: "Home", Path: ""}, {Title: "A", Path: "a"}}, crumbs)
}

// TestScopedNavigationSectionsBecomeLeaves exercises S7 from the spec.
func TestScopedNavigationSectionsBecomeLeaves(t *testing.T) {
	b := NewSiteStateBuilder()
	root := b.AddPage("Home", "", true, -1, "", nil)
	billing := b.AddPage("Billing", "billing", true, root, "domain", nil)
	b.AddPage("Invoices", "billing/invoices", true, billing, "", nil)
	b.AddPage("Guide", "guide", true, root, "", nil)

	s := b.Build()

	rootNav := s.Navigation("")
	require.Len(t, rootNav.Items, 2)
	for _, item := range rootNav.Items {
		if item.Path == "billing" {
			require.True(t, item.IsSection)
		}
	}

	scoped := s.Navigation("billing")
	require.Len(t, scoped.Items, 1)
	require.Equal(t, "billing/invoices", scoped.Items[0].Path)
	require.NotNil(t, scoped.Scope)
	require.Equal(t, "/billing", scoped.Scope.Path)
	require.Equal(t, "domain", scoped.Scope.SectionType)
}

func TestNavigationInvalidScopeIsEmpty(t *testing.T) {
	b := NewSiteStateBuilder()
	b.AddPage("Home", "", true, -1, "", nil)
	s := b.Build()

	nav := s.Navigation("nonexistent")
	require.Empty(t, nav.Items)
	require.Nil(t, nav.Scope)
}

func TestNavigationFiltersEmptySubtrees(t *testing.T) {
	b := NewSiteStateBuilder()
	root := b.AddPage("Home", "", true, -1, "", nil)
	b.AddPage("Empty", "empty", false, root, "", nil)
	b.AddPage("Real", "real", true, root, "", nil)

	s := b.Build()
	nav := s.Navigation("")
	require.Len(t, nav.Items, 1)
	require.Equal(t, "real", nav.Items[0].Path)
}

func TestGetNavigationScopeNearestAncestorSection(t *testing.T) {
	b := NewSiteStateBuilder()
	root := b.AddPage("Home", "", true, -1, "", nil)
	billing := b.AddPage("Billing", "billing", true, root, "domain", nil)
	b.AddPage("Invoices", "billing/invoices", true, billing, "", nil)

	s := b.Build()
	require.Equal(t, "billing", s.GetNavigationScope("billing/invoices"))
	require.Equal(t, "billing", s.GetNavigationScope("billing"))
	require.Equal(t, "", s.GetNavigationScope(""))
}

func TestSortDocumentsForBuildOrdersParentsFirst(t *testing.T) {
	isIndex := map[string]bool{"": true, "a": false, "a/b": true}
	got := SortDocumentsForBuild([]string{"a/b", "a", ""}, isIndex)
	require.Equal(t, []string{"", "a", "a/b"}, got)
}
