package resolver_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/styleforge/document"
	"github.com/c360studio/styleforge/resolver"
)

func stylesheetDoc(store *document.Store, name, body string) *document.Document {
	content := fmt.Sprintf(`<?xml version="1.0"?>
<xsl:stylesheet version="1.0" xmlns:xsl="http://www.w3.org/1999/XSL/Transform">
%s
  <xsl:template match="/"><out/></xsl:template>
</xsl:stylesheet>`, body)
	return store.Put(name, document.KindStylesheet, []byte(content))
}

func TestResolve_NoDirectives(t *testing.T) {
	store := document.NewStore()
	sheet := stylesheetDoc(store, "main.xsl", "")
	pool := []*document.Document{stylesheetDoc(store, "other.xsl", "")}

	r := resolver.New()
	text, deps := r.Resolve(sheet, pool)

	assert.Empty(t, deps)
	assert.Equal(t, string(sheet.Content), text)
	assert.Empty(t, resolver.MissingError(deps))
}

func TestResolve_ExactMatch(t *testing.T) {
	store := document.NewStore()
	dep := stylesheetDoc(store, "common.xsl", "")
	sheet := stylesheetDoc(store, "main.xsl", `  <xsl:include href="common.xsl"/>`)

	r := resolver.New()
	text, deps := r.Resolve(sheet, []*document.Document{dep})

	require.Len(t, deps, 1)
	assert.Equal(t, resolver.StatusResolved, deps[0].Status)
	assert.Equal(t, resolver.DirectiveInclude, deps[0].Kind)
	assert.Equal(t, "common.xsl", deps[0].DeclaredPath)
	assert.Equal(t, dep.ID, deps[0].ResolvedDocID)
	assert.Equal(t, "exact", deps[0].MatchedBy)
	assert.Equal(t, sheet.ID, deps[0].StylesheetID)

	assert.NotContains(t, text, "<xsl:include")
	assert.Contains(t, text, `resolved to common.xsl`)
}

func TestResolve_BasenameMatch(t *testing.T) {
	store := document.NewStore()
	dep := stylesheetDoc(store, "common.xsl", "")
	sheet := stylesheetDoc(store, "main.xsl", `  <xsl:import href="../shared/Common.XSL"/>`)

	r := resolver.New()
	_, deps := r.Resolve(sheet, []*document.Document{dep})

	require.Len(t, deps, 1)
	assert.Equal(t, resolver.StatusResolved, deps[0].Status)
	assert.Equal(t, resolver.DirectiveImport, deps[0].Kind)
	assert.Equal(t, "basename", deps[0].MatchedBy)
}

func TestResolve_StyleFamilyMatch(t *testing.T) {
	store := document.NewStore()
	dep := stylesheetDoc(store, "InvoiceStyle.xsl", "")
	sheet := stylesheetDoc(store, "main.xsl", `  <xsl:include href="Invoice_2024Style.xsl"/>`)

	r := resolver.New()
	_, deps := r.Resolve(sheet, []*document.Document{dep})

	require.Len(t, deps, 1)
	assert.Equal(t, resolver.StatusResolved, deps[0].Status)
	assert.Equal(t, "style-family", deps[0].MatchedBy)
	assert.Equal(t, dep.ID, deps[0].ResolvedDocID)
}

func TestResolve_Missing(t *testing.T) {
	store := document.NewStore()
	sheet := stylesheetDoc(store, "main.xsl", `  <xsl:include href="Missing.xsl"/>`)

	r := resolver.New()
	text, deps := r.Resolve(sheet, nil)

	require.Len(t, deps, 1)
	assert.Equal(t, resolver.StatusMissing, deps[0].Status)
	assert.Empty(t, deps[0].ResolvedDocID)
	assert.Contains(t, text, `could not be resolved`)

	msg := resolver.MissingError(deps)
	assert.Contains(t, msg, "Missing.xsl")
}

func TestResolve_DuplicateDirectivesKept(t *testing.T) {
	store := document.NewStore()
	dep := stylesheetDoc(store, "common.xsl", "")
	sheet := stylesheetDoc(store, "main.xsl",
		"  <xsl:include href=\"common.xsl\"/>\n  <xsl:include href=\"common.xsl\"/>")

	r := resolver.New()
	_, deps := r.Resolve(sheet, []*document.Document{dep})

	require.Len(t, deps, 2)
	assert.Equal(t, deps[0].DeclaredPath, deps[1].DeclaredPath)
	assert.Equal(t, deps[0].ResolvedDocID, deps[1].ResolvedDocID)
}

func TestResolve_DeclarationOrderAndMixedOutcomes(t *testing.T) {
	store := document.NewStore()
	dep := stylesheetDoc(store, "a.xsl", "")
	sheet := stylesheetDoc(store, "main.xsl",
		"  <xsl:import href=\"a.xsl\"/>\n  <xsl:include href=\"b.xsl\"/>\n  <xsl:include href=\"c.xsl\"/>")

	r := resolver.New()
	_, deps := r.Resolve(sheet, []*document.Document{dep})

	require.Len(t, deps, 3)
	assert.Equal(t, "a.xsl", deps[0].DeclaredPath)
	assert.Equal(t, resolver.StatusResolved, deps[0].Status)
	assert.Equal(t, "b.xsl", deps[1].DeclaredPath)
	assert.Equal(t, resolver.StatusMissing, deps[1].Status)
	assert.Equal(t, "c.xsl", deps[2].DeclaredPath)
	assert.Equal(t, resolver.StatusMissing, deps[2].Status)

	msg := resolver.MissingError(deps)
	assert.Contains(t, msg, "b.xsl")
	assert.Contains(t, msg, "c.xsl")
	assert.NotContains(t, msg, "a.xsl,")
}

func TestResolve_FreshRecordsPerPass(t *testing.T) {
	store := document.NewStore()
	dep := stylesheetDoc(store, "common.xsl", "")
	sheet := stylesheetDoc(store, "main.xsl", `  <xsl:include href="common.xsl"/>`)

	r := resolver.New()
	_, first := r.Resolve(sheet, []*document.Document{dep})
	_, second := r.Resolve(sheet, []*document.Document{dep})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotSame(t, &first[0], &second[0])
}

func TestResolve_CustomMatcherChain(t *testing.T) {
	store := document.NewStore()
	dep := stylesheetDoc(store, "common.xsl", "")
	sheet := stylesheetDoc(store, "main.xsl", `  <xsl:include href="Invoice_2024Style.xsl"/>`)

	// Exact-only chain: the family heuristic is disabled.
	r := resolver.New(resolver.WithMatchers(resolver.ExactMatcher{}))
	_, deps := r.Resolve(sheet, []*document.Document{dep})

	require.Len(t, deps, 1)
	assert.Equal(t, resolver.StatusMissing, deps[0].Status)
}
