package service

import (
	"testing"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"
	"edconnect_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestResolveScope(t *testing.T) {
	user := func(role model.UserRole, level model.AdminLevel, district, school, dept *uint) *model.User {
		u := &model.User{Role: role, AdminLevel: level, DistrictID: district, SchoolID: school, DepartmentID: dept}
		u.ID = 42
		return u
	}

	tests := []struct {
		name  string
		actor *model.User
		want  repository.AccessScope
	}{
		{"internal caller", nil, repository.AllAccess()},
		{"district admin", user(model.Admin, model.AdminLevelDistrict, util.UintPtr(3), util.UintPtr(5), nil), repository.DistrictAccess(3)},
		{"school admin", user(model.Admin, model.AdminLevelSchool, util.UintPtr(3), util.UintPtr(5), nil), repository.SchoolAccess(5)},
		{"department admin", user(model.Admin, model.AdminLevelDepartment, nil, util.UintPtr(5), util.UintPtr(9)), repository.DepartmentAccess(9)},
		{"school admin without school", user(model.Admin, model.AdminLevelSchool, util.UintPtr(3), nil, nil), repository.NoAccess()},
		{"admin without level", user(model.Admin, "", util.UintPtr(3), nil, nil), repository.NoAccess()},
		{"educator", user(model.Educator, "", nil, util.UintPtr(5), nil), repository.EducatorAccess(42)},
		{"student", user(model.Student, "", nil, util.UintPtr(5), nil), repository.OwnAccess(42)},
		{"unknown role", user("parent", "", nil, nil, nil), repository.NoAccess()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveScope(tt.actor))
		})
	}
}
