package diagram

import "testing"

func TestMetaIncludeSourceRewritesSystemIncludes(t *testing.T) {
	resolve := func(entityType, name string) (string, bool) {
		if entityType == "system" && name == "billing" {
			return "systems/billing", true
		}
		return "", false
	}
	m := NewMetaIncludeSource(resolve, false, true)

	out := m.Rewrite("!include systems/sys_billing.iuml", "guide/intro")
	if got, want := out, `System(billing, "billing", $link="/systems/billing/")`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMetaIncludeSourceUnresolvedSystemOmitsLink(t *testing.T) {
	m := NewMetaIncludeSource(func(string, string) (string, bool) { return "", false }, false, false)
	out := m.Rewrite("!include systems/svc_auth.iuml", "guide/intro")
	if got, want := out, `Container(auth, "auth")`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMetaIncludeSourceLeavesUnrelatedIncludesAlone(t *testing.T) {
	m := NewMetaIncludeSource(nil, false, false)
	line := "!include shared/common.iuml"
	if out := m.Rewrite(line, "guide/intro"); out != line {
		t.Fatalf("got %q, want unchanged %q", out, line)
	}
}

func TestMetaIncludeSourcePassesEntityTypeByKind(t *testing.T) {
	var gotType string
	resolve := func(entityType, name string) (string, bool) {
		gotType = entityType
		return "domains/payments", true
	}
	m := NewMetaIncludeSource(resolve, false, false)
	m.Rewrite("!include systems/dmn_payments.iuml", "guide/intro")
	if gotType != "domain" {
		t.Fatalf("got entity type %q, want %q", gotType, "domain")
	}
}

// TestMetaIncludeSourceRelativeLinkClimbsFromPageDir mirrors
// original_source's resolve_link: with relativeLinks and trailingSlash both
// set, the page's own basePath is treated as a directory (it's hosted as
// basePath/index.html), so the link climbs one level per basePath segment.
func TestMetaIncludeSourceRelativeLinkClimbsFromPageDir(t *testing.T) {
	resolve := func(entityType, name string) (string, bool) {
		return "systems/billing", true
	}
	m := NewMetaIncludeSource(resolve, true, true)

	out := m.Rewrite("!include systems/sys_billing.iuml", "guide/arch/overview")
	if got, want := out, `System(billing, "billing", $link="../../../systems/billing/")`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// TestMetaIncludeSourceRelativeLinkWithoutTrailingSlash confirms basePath is
// treated as a file (climbing from its parent directory) when trailingSlash
// is off, matching RelativeFromDir's page-link behavior.
func TestMetaIncludeSourceRelativeLinkWithoutTrailingSlash(t *testing.T) {
	resolve := func(entityType, name string) (string, bool) {
		return "systems/billing", true
	}
	m := NewMetaIncludeSource(resolve, true, false)

	out := m.Rewrite("!include systems/sys_billing.iuml", "guide/arch/overview")
	if got, want := out, `System(billing, "billing", $link="../../systems/billing")`; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
