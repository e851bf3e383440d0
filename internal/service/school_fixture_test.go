package service

import (
	"testing"

	"edconnect_backend/internal/model"
	"edconnect_backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const seedYAML = `
districts:
  - name: North District
    schools:
      - name: Lincoln High School
        departments: [Mathematics, Science]
  - name: South District
    schools:
      - name: Roosevelt Middle School
users:
  - username: north_admin
    email: north@example.org
    password: secret123
    role: admin
    admin_level: district
    district: North District
  - username: lincoln_admin
    email: lincoln@example.org
    password: secret123
    role: admin
    admin_level: school
    school: Lincoln High School
  - username: ms_rivera
    email: rivera@example.org
    password: secret123
    full_name: Ana Rivera
    role: educator
    school: Lincoln High School
    department: Mathematics
  - username: mr_chen
    email: chen@example.org
    password: secret123
    full_name: Wei Chen
    role: educator
    school: Roosevelt Middle School
  - username: jane
    email: jane@example.org
    password: secret123
    full_name: Jane Doe
    role: student
    school: Lincoln High School
    grade_level: 9
    student_number: S-1001
  - username: omar
    email: omar@example.org
    password: secret123
    full_name: Omar Khan
    role: student
    school: Roosevelt Middle School
`

type schoolWorld struct {
	db       *gorm.DB
	users    *repository.UserRepository
	orgs     *repository.OrganizationRepository
	schools  *SchoolService
	accounts map[string]*model.User
}

func newSchoolWorld(t *testing.T) *schoolWorld {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	orgs := repository.NewOrganizationRepository(db)

	f, err := ParseSeedFile([]byte(seedYAML))
	require.NoError(t, err)
	_, err = NewSeedService(users, orgs).Apply(f)
	require.NoError(t, err)

	w := &schoolWorld{
		db:    db,
		users: users,
		orgs:  orgs,
		schools: NewSchoolService(users, orgs, repository.NewClassRepository(db),
			repository.NewGradeRepository(db), repository.NewAttendanceRepository(db)),
		accounts: map[string]*model.User{},
	}
	for _, name := range []string{"north_admin", "lincoln_admin", "ms_rivera", "mr_chen", "jane", "omar"} {
		u, err := users.FindByUsername(name)
		require.NoError(t, err)
		w.accounts[name] = u
	}
	return w
}
