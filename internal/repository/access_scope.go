package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// ScopeKind 标记调用者可见的数据边界
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeDistrict
	ScopeSchool
	ScopeDepartment
	ScopeEducator
	ScopeOwn
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeAll:
		return "all"
	case ScopeDistrict:
		return "district"
	case ScopeSchool:
		return "school"
	case ScopeDepartment:
		return "department"
	case ScopeEducator:
		return "educator"
	case ScopeOwn:
		return "own"
	}
	return "none"
}

// AccessScope is computed once per request and applied to every query as a
// SQL predicate. ID is the district/school/department id or the user id,
// depending on Kind.
type AccessScope struct {
	Kind ScopeKind
	ID   uint
}

func AllAccess() AccessScope                 { return AccessScope{Kind: ScopeAll} }
func NoAccess() AccessScope                  { return AccessScope{Kind: ScopeNone} }
func DistrictAccess(id uint) AccessScope     { return AccessScope{Kind: ScopeDistrict, ID: id} }
func SchoolAccess(id uint) AccessScope       { return AccessScope{Kind: ScopeSchool, ID: id} }
func DepartmentAccess(id uint) AccessScope   { return AccessScope{Kind: ScopeDepartment, ID: id} }
func EducatorAccess(userID uint) AccessScope { return AccessScope{Kind: ScopeEducator, ID: userID} }
func OwnAccess(userID uint) AccessScope      { return AccessScope{Kind: ScopeOwn, ID: userID} }

func (s AccessScope) String() string {
	if s.Kind == ScopeAll || s.Kind == ScopeNone {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s(%d)", s.Kind, s.ID)
}

// ScopeRule describes how an entity table relates to the organisation tree.
// Empty columns mean the relation does not exist for that table.
type ScopeRule struct {
	DistrictColumn   string
	SchoolColumn     string
	DepartmentColumn string
	// ClassColumn references classes.id.
	ClassColumn string
	// OwnerColumn references users.id (the student or author of the row).
	OwnerColumn string
	// EducatorColumn references the teaching user (classes only).
	EducatorColumn string
	// MemberOfColumn is matched against users.department_id of the caller.
	MemberOfColumn string
	// SharedWithinSchool rows are visible to everyone in the caller's school.
	SharedWithinSchool bool
}

var (
	UserScope = ScopeRule{
		DistrictColumn:   "district_id",
		SchoolColumn:     "school_id",
		DepartmentColumn: "department_id",
		OwnerColumn:      "id",
	}
	ClassScope = ScopeRule{
		DistrictColumn:   "district_id",
		SchoolColumn:     "school_id",
		DepartmentColumn: "department_id",
		ClassColumn:      "id",
		EducatorColumn:   "educator_id",
	}
	// 成绩、考勤、选课都通过 class_id 归属到组织
	ClassFactScope = ScopeRule{
		ClassColumn: "class_id",
		OwnerColumn: "student_id",
	}
	AchievementScope = ScopeRule{
		OwnerColumn: "user_id",
	}
	TutoringSessionScope = ScopeRule{
		OwnerColumn: "student_id",
	}
	DepartmentScope = ScopeRule{
		DistrictColumn:   "district_id",
		SchoolColumn:     "school_id",
		DepartmentColumn: "id",
		MemberOfColumn:   "id",
	}
	LearningPathScope = ScopeRule{
		DistrictColumn:     "district_id",
		SchoolColumn:       "school_id",
		OwnerColumn:        "creator_id",
		SharedWithinSchool: true,
	}
)

const enrolledStudentsOf = "SELECT enrollments.student_id FROM enrollments JOIN classes ON classes.id = enrollments.class_id " +
	"WHERE classes.educator_id = ? AND enrollments.deleted_at IS NULL AND classes.deleted_at IS NULL"

func orgField(kind ScopeKind) string {
	switch kind {
	case ScopeDistrict:
		return "district_id"
	case ScopeSchool:
		return "school_id"
	case ScopeDepartment:
		return "department_id"
	}
	return ""
}

func (r ScopeRule) orgColumn(kind ScopeKind) string {
	switch kind {
	case ScopeDistrict:
		return r.DistrictColumn
	case ScopeSchool:
		return r.SchoolColumn
	case ScopeDepartment:
		return r.DepartmentColumn
	}
	return ""
}

func deny(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// Apply narrows db to the rows of rule's table visible under s. A scope that
// cannot be expressed for the table yields no rows.
func (s AccessScope) Apply(db *gorm.DB, rule ScopeRule) *gorm.DB {
	switch s.Kind {
	case ScopeAll:
		return db

	case ScopeDistrict, ScopeSchool, ScopeDepartment:
		field := orgField(s.Kind)
		switch {
		case rule.orgColumn(s.Kind) != "":
			return db.Where(rule.orgColumn(s.Kind)+" = ?", s.ID)
		case rule.ClassColumn != "":
			return db.Where(rule.ClassColumn+" IN (SELECT id FROM classes WHERE "+field+" = ? AND deleted_at IS NULL)", s.ID)
		case rule.OwnerColumn != "":
			return db.Where(rule.OwnerColumn+" IN (SELECT id FROM users WHERE "+field+" = ? AND deleted_at IS NULL)", s.ID)
		}

	case ScopeEducator:
		switch {
		case rule.SharedWithinSchool:
			return s.applySchoolShared(db, rule)
		case rule.EducatorColumn != "":
			return db.Where(rule.EducatorColumn+" = ?", s.ID)
		case rule.ClassColumn != "":
			return db.Where(rule.ClassColumn+" IN (SELECT id FROM classes WHERE educator_id = ? AND deleted_at IS NULL)", s.ID)
		case rule.OwnerColumn != "":
			return db.Where("("+rule.OwnerColumn+" IN ("+enrolledStudentsOf+") OR "+rule.OwnerColumn+" = ?)", s.ID, s.ID)
		case rule.MemberOfColumn != "":
			return s.applyMemberOf(db, rule)
		}

	case ScopeOwn:
		switch {
		case rule.SharedWithinSchool:
			return s.applySchoolShared(db, rule)
		case rule.OwnerColumn != "":
			return db.Where(rule.OwnerColumn+" = ?", s.ID)
		case rule.ClassColumn != "":
			return db.Where(rule.ClassColumn+" IN (SELECT class_id FROM enrollments WHERE student_id = ? AND deleted_at IS NULL)", s.ID)
		case rule.MemberOfColumn != "":
			return s.applyMemberOf(db, rule)
		}
	}
	return deny(db)
}

func (s AccessScope) applySchoolShared(db *gorm.DB, rule ScopeRule) *gorm.DB {
	if rule.SchoolColumn == "" {
		return deny(db)
	}
	cond := rule.SchoolColumn + " IN (SELECT school_id FROM users WHERE id = ? AND school_id IS NOT NULL)"
	if rule.OwnerColumn != "" {
		return db.Where("("+cond+" OR "+rule.OwnerColumn+" = ?)", s.ID, s.ID)
	}
	return db.Where(cond, s.ID)
}

func (s AccessScope) applyMemberOf(db *gorm.DB, rule ScopeRule) *gorm.DB {
	return db.Where(rule.MemberOfColumn+" IN (SELECT department_id FROM users WHERE id = ? AND department_id IS NOT NULL)", s.ID)
}
