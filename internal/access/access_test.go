package access

import (
	"testing"

	"github.com/pr-poehali-dev/client-support-chat-2/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestHasAccess(t *testing.T) {
	t.Run("operator does not see employee management", func(t *testing.T) {
		assert.False(t, HasAccess([]string{"operator"}, SectionEmployeeManagement))
	})

	t.Run("admin sees employee management", func(t *testing.T) {
		assert.True(t, HasAccess([]string{"admin"}, SectionEmployeeManagement))
	})

	t.Run("operator sees chats", func(t *testing.T) {
		assert.True(t, HasAccess([]string{"operator"}, SectionChats))
	})

	t.Run("editor does not see chats", func(t *testing.T) {
		assert.False(t, HasAccess([]string{"editor"}, SectionChats))
	})

	t.Run("multi-role grants union of sections", func(t *testing.T) {
		roles := []string{"operator", "editor"}
		assert.True(t, HasAccess(roles, SectionChats))
		assert.True(t, HasAccess(roles, SectionKnowledgeEdit))
		assert.False(t, HasAccess(roles, SectionEmployeeManagement))
	})

	t.Run("no roles no access", func(t *testing.T) {
		for s := range sectionRoles {
			assert.Falsef(t, HasAccess(nil, s), "section %s", s)
		}
	})

	t.Run("unknown section denied", func(t *testing.T) {
		assert.False(t, HasAccess([]string{"admin"}, Section("billing")))
	})
}

// Доступ определяется строго пересечением ролей с ролями раздела.
func TestHasAccessMatchesIntersection(t *testing.T) {
	roleSets := [][]string{
		nil,
		{"operator"},
		{"okk"},
		{"admin"},
		{"editor"},
		{"jira_operator"},
		{"operator", "okk"},
		{"editor", "jira_operator"},
		{"operator", "okk", "admin", "editor", "jira_operator"},
	}
	for section, allowed := range sectionRoles {
		for _, roles := range roleSets {
			want := false
			for _, a := range allowed {
				for _, r := range roles {
					if model.Role(r) == a {
						want = true
					}
				}
			}
			assert.Equalf(t, want, HasAccess(roles, section), "section=%s roles=%v", section, roles)
		}
	}
}

func TestSections(t *testing.T) {
	t.Run("admin sees everything", func(t *testing.T) {
		got := Sections([]string{"admin"})
		assert.Len(t, got, len(sectionRoles))
	})

	t.Run("operator sees chats and knowledge only", func(t *testing.T) {
		got := Sections([]string{"operator"})
		assert.Equal(t, []Section{SectionChats, SectionKnowledge}, got)
	})

	t.Run("okk sees qc sections", func(t *testing.T) {
		got := Sections([]string{"okk"})
		assert.Contains(t, got, SectionQCRatings)
		assert.Contains(t, got, SectionQCArchive)
		assert.Contains(t, got, SectionClients)
		assert.NotContains(t, got, SectionEmployeeManagement)
	})
}
