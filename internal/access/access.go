// Package access — статическая матрица «раздел интерфейса → роли».
// Доступ есть, если пересечение ролей сотрудника с ролями раздела непусто.
package access

import "github.com/pr-poehali-dev/client-support-chat-2/internal/model"

type Section string

const (
	SectionChats              Section = "chats"
	SectionClients            Section = "clients"
	SectionKnowledge          Section = "knowledge"
	SectionKnowledgeEdit      Section = "knowledgeEdit"
	SectionShifts             Section = "shifts"
	SectionJiraTemplates      Section = "jiraTemplates"
	SectionQCRatings          Section = "qcRatings"
	SectionQCArchive          Section = "qcArchive"
	SectionEmployeeManagement Section = "employeeManagement"
)

var sectionRoles = map[Section][]model.Role{
	SectionChats:              {model.RoleOperator, model.RoleOKK, model.RoleAdmin, model.RoleJiraOperator},
	SectionClients:            {model.RoleOKK, model.RoleAdmin},
	SectionKnowledge:          {model.RoleOperator, model.RoleOKK, model.RoleAdmin, model.RoleEditor, model.RoleJiraOperator},
	SectionKnowledgeEdit:      {model.RoleEditor, model.RoleAdmin},
	SectionShifts:             {model.RoleAdmin},
	SectionJiraTemplates:      {model.RoleJiraOperator, model.RoleEditor, model.RoleAdmin},
	SectionQCRatings:          {model.RoleOKK, model.RoleAdmin},
	SectionQCArchive:          {model.RoleOKK, model.RoleAdmin},
	SectionEmployeeManagement: {model.RoleAdmin},
}

// AllowedRoles возвращает роли, которым открыт раздел. Неизвестный раздел
// не открыт никому.
func AllowedRoles(s Section) []model.Role {
	return sectionRoles[s]
}

// HasAccess — true, если хотя бы одна из ролей roles допущена к разделу s.
func HasAccess(roles []string, s Section) bool {
	for _, allowed := range sectionRoles[s] {
		for _, r := range roles {
			if model.Role(r) == allowed {
				return true
			}
		}
	}
	return false
}

// Sections — разделы, видимые сотруднику с данным набором ролей.
// Порядок стабильный, как в табах дашборда.
func Sections(roles []string) []Section {
	ordered := []Section{
		SectionChats,
		SectionClients,
		SectionKnowledge,
		SectionKnowledgeEdit,
		SectionShifts,
		SectionJiraTemplates,
		SectionQCRatings,
		SectionQCArchive,
		SectionEmployeeManagement,
	}
	var out []Section
	for _, s := range ordered {
		if HasAccess(roles, s) {
			out = append(out, s)
		}
	}
	return out
}
