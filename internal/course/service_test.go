package course_test

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adiwijaya/course-management/internal"
	"github.com/adiwijaya/course-management/internal/content"
	"github.com/adiwijaya/course-management/internal/course"
	"github.com/adiwijaya/course-management/internal/user"
)

// Mock course repository for testing
type mockCourseRepo struct {
	courses     map[string]*course.Course
	modules     map[string][]*content.Module
	createError error
	nextModule  int64
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses:    make(map[string]*course.Course),
		modules:    make(map[string][]*content.Module),
		nextModule: 1,
	}
}

func (m *mockCourseRepo) List(filter course.ListFilter) ([]*course.Course, error) {
	var out []*course.Course
	for _, c := range m.courses {
		if filter.Department != "" && c.Department != filter.Department {
			continue
		}
		if filter.Status != "" {
			if status, ok := course.ParseStatus(filter.Status); ok && c.Status != status {
				continue
			}
		}
		if filter.InstructorID != nil && (c.InstructorID == nil || *c.InstructorID != *filter.InstructorID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCourseRepo) ListByInstructor(instructorID int64) ([]*course.Course, error) {
	var out []*course.Course
	for _, c := range m.courses {
		if c.InstructorID != nil && *c.InstructorID == instructorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) ListActiveByDepartment(department string) ([]*course.Course, error) {
	var out []*course.Course
	for _, c := range m.courses {
		if strings.EqualFold(c.Department, department) && c.Status == course.StatusActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) GetByID(id string) (*course.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, internal.ErrCourseNotFound
	}
	return c, nil
}

func (m *mockCourseRepo) GetOwned(id string, instructorID int64) (*course.Course, error) {
	c, ok := m.courses[id]
	if !ok || c.InstructorID == nil || *c.InstructorID != instructorID {
		return nil, internal.ErrCourseNotFound
	}
	return c, nil
}

func (m *mockCourseRepo) GetActiveInDepartment(id, department string) (*course.Course, error) {
	c, ok := m.courses[id]
	if !ok || !strings.EqualFold(c.Department, department) || c.Status != course.StatusActive {
		return nil, internal.ErrCourseNotFound
	}
	return c, nil
}

func (m *mockCourseRepo) TitleExists(normalized, excludeID string) (bool, error) {
	for _, c := range m.courses {
		if c.TitleNormalized == normalized && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) CreateWithModules(c *course.Course, modules []*content.Module) error {
	if m.createError != nil {
		return m.createError
	}
	if exists, _ := m.TitleExists(c.TitleNormalized, c.ID); exists {
		return internal.ErrDuplicateTitle
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	m.courses[c.ID] = c
	for _, mod := range modules {
		mod.ID = m.nextModule
		m.nextModule++
		m.modules[c.ID] = append(m.modules[c.ID], mod)
	}
	c.Modules = nil
	for _, mod := range m.modules[c.ID] {
		c.Modules = append(c.Modules, *mod)
	}
	return nil
}

func (m *mockCourseRepo) UpdateWithModules(c *course.Course, modules []*content.Module) error {
	if exists, _ := m.TitleExists(c.TitleNormalized, c.ID); exists {
		return internal.ErrDuplicateTitle
	}
	c.UpdatedAt = time.Now()
	m.courses[c.ID] = c
	for _, mod := range modules {
		mod.ID = m.nextModule
		m.nextModule++
		m.modules[c.ID] = append(m.modules[c.ID], mod)
	}
	return nil
}

func (m *mockCourseRepo) Delete(id string) error {
	delete(m.courses, id)
	delete(m.modules, id)
	return nil
}

// Mock department verifier
type mockDepartmentVerifier struct {
	pairs map[string]bool
}

func newMockDepartmentVerifier() *mockDepartmentVerifier {
	return &mockDepartmentVerifier{pairs: make(map[string]bool)}
}

func (m *mockDepartmentVerifier) allow(department, subdepartment string) {
	m.pairs[department+"/"+subdepartment] = true
}

func (m *mockDepartmentVerifier) SubdepartmentBelongs(department, subdepartment string) (bool, error) {
	return m.pairs[department+"/"+subdepartment], nil
}

// Mock content store recording saves
type mockContentStore struct {
	saved     []string
	saveError error
}

func (m *mockContentStore) Save(courseID, filename string, r io.Reader) (string, error) {
	if m.saveError != nil {
		return "", m.saveError
	}
	path := fmt.Sprintf("course-content/%s/%s", courseID, filename)
	m.saved = append(m.saved, path)
	return path, nil
}

var _ = Describe("NormalizeTitle", func() {
	It("should lowercase and collapse whitespace", func() {
		Expect(course.NormalizeTitle("  Intro   To  GO ")).To(Equal("intro to go"))
	})

	It("should be idempotent", func() {
		once := course.NormalizeTitle("Some   COURSE Title")
		Expect(course.NormalizeTitle(once)).To(Equal(once))
	})
})

var _ = Describe("CourseService", func() {
	var (
		service     *course.Service
		repo        *mockCourseRepo
		departments *mockDepartmentVerifier
		store       *mockContentStore
		admin       *user.User
		instructor  *user.User
	)

	BeforeEach(func() {
		repo = newMockCourseRepo()
		departments = newMockDepartmentVerifier()
		store = &mockContentStore{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = course.NewService(repo, departments, store, "http://localhost:8080/storage", logger)

		admin = &user.User{ID: 1, Role: user.RoleAdmin, Status: user.StatusActive}
		instructor = &user.User{ID: 2, Role: user.RoleInstructor, Status: user.StatusActive}
	})

	Describe("CreateAdmin", func() {
		It("should reject a missing title", func() {
			_, err := service.CreateAdmin(admin, course.CreateCourseDTO{Department: "Engineering"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Fields).To(HaveKey("title"))
		})

		It("should reject a duplicate title differing only in case and spacing", func() {
			_, err := service.CreateAdmin(admin, course.CreateCourseDTO{Title: "Go Fundamentals", Department: "Engineering"})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.CreateAdmin(admin, course.CreateCourseDTO{Title: "  go   FUNDAMENTALS ", Department: "Engineering"})
			Expect(err).To(Equal(internal.ErrDuplicateTitle))

			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(422))
		})

		It("should reject a subdepartment outside the department", func() {
			departments.allow("Engineering", "Backend")

			_, err := service.CreateAdmin(admin, course.CreateCourseDTO{
				Title:         "API Design",
				Department:    "Finance",
				Subdepartment: "Backend",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Fields).To(HaveKey("subdepartment"))
		})

		It("should accept a valid department and subdepartment pair", func() {
			departments.allow("Engineering", "Backend")

			c, err := service.CreateAdmin(admin, course.CreateCourseDTO{
				Title:         "API Design",
				Department:    "Engineering",
				Subdepartment: "Backend",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Subdepartment).To(Equal("Backend"))
			Expect(c.CreatedBy).To(Equal(admin.ID))
			Expect(c.Status).To(Equal(course.StatusActive))
		})

		It("should store module files and default empty titles", func() {
			dto := course.CreateCourseDTO{
				Title:      "Go Fundamentals",
				Department: "Engineering",
				Modules: []course.ModuleUpload{
					{Title: "Slides", Filename: "slides.pdf", File: strings.NewReader("pdf-bytes")},
					{Title: "", Filename: "intro.mp4", File: strings.NewReader("mp4-bytes")},
				},
			}

			c, err := service.CreateAdmin(admin, dto)
			Expect(err).ToNot(HaveOccurred())
			Expect(store.saved).To(HaveLen(2))
			Expect(c.Modules).To(HaveLen(2))
			Expect(c.Modules[0].Title).To(Equal("Slides"))
			Expect(c.Modules[1].Title).To(Equal(content.DefaultTitle))
		})

		It("should skip module entries without a file", func() {
			dto := course.CreateCourseDTO{
				Title:      "Go Fundamentals",
				Department: "Engineering",
				Modules: []course.ModuleUpload{
					{Title: "No upload attached"},
					{Title: "Real one", Filename: "doc.docx", File: strings.NewReader("bytes")},
				},
			}

			c, err := service.CreateAdmin(admin, dto)
			Expect(err).ToNot(HaveOccurred())
			Expect(store.saved).To(HaveLen(1))
			Expect(c.Modules).To(HaveLen(1))
			Expect(c.Modules[0].Title).To(Equal("Real one"))
		})
	})

	Describe("UpdateOwn", func() {
		var owned *course.Course

		BeforeEach(func() {
			var err error
			owned, err = service.CreateOwn(instructor, course.CreateCourseDTO{
				Title:      "Owned Course",
				Department: "Engineering",
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should return not found for another instructor's course", func() {
			other, err := service.CreateOwn(&user.User{ID: 99, Role: user.RoleInstructor, Status: user.StatusActive},
				course.CreateCourseDTO{Title: "Foreign Course", Department: "Engineering"})
			Expect(err).ToNot(HaveOccurred())

			title := "Hijacked"
			_, err = service.UpdateOwn(instructor, other.ID, course.UpdateCourseDTO{Title: &title})
			Expect(err).To(Equal(internal.ErrCourseNotFound))
		})

		It("should update title, description and status", func() {
			title := "Owned Course v2"
			desc := "updated"
			status := "Draft"
			c, err := service.UpdateOwn(instructor, owned.ID, course.UpdateCourseDTO{
				Title:       &title,
				Description: &desc,
				Status:      &status,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Title).To(Equal("Owned Course v2"))
			Expect(c.Description).To(Equal("updated"))
			Expect(c.Status).To(Equal(course.StatusDraft))
		})

		It("should ignore attempts to move the course to another department", func() {
			dept := "Finance"
			c, err := service.UpdateOwn(instructor, owned.ID, course.UpdateCourseDTO{Department: &dept})
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Department).To(Equal("Engineering"))
		})
	})

	Describe("employee scoped reads", func() {
		BeforeEach(func() {
			_, err := service.CreateAdmin(admin, course.CreateCourseDTO{
				Title: "Engineering Active", Department: "Engineering", Status: "Active",
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.CreateAdmin(admin, course.CreateCourseDTO{
				Title: "Engineering Draft", Department: "Engineering", Status: "Draft",
			})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.CreateAdmin(admin, course.CreateCourseDTO{
				Title: "Finance Active", Department: "Finance", Status: "Active",
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should list only active courses of the department", func() {
			courses, err := service.ListForDepartment("Engineering")
			Expect(err).ToNot(HaveOccurred())
			Expect(courses).To(HaveLen(1))
			Expect(courses[0].Title).To(Equal("Engineering Active"))
		})

		It("should answer not found for a draft course fetched by id", func() {
			all, err := service.ListAdmin(course.ListFilter{Department: "Engineering", Status: "Draft"})
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(1))

			_, err = service.GetForDepartment(all[0].ID, "Engineering")
			Expect(err).To(Equal(internal.ErrCourseNotFound))
		})

		It("should answer not found for a course from another department", func() {
			all, err := service.ListAdmin(course.ListFilter{Department: "Finance"})
			Expect(err).ToNot(HaveOccurred())
			Expect(all).To(HaveLen(1))

			_, err = service.GetForDepartment(all[0].ID, "Engineering")
			Expect(err).To(Equal(internal.ErrCourseNotFound))
		})
	})

	Describe("DashboardForInstructor", func() {
		It("should count total, active and draft courses", func() {
			_, err := service.CreateOwn(instructor, course.CreateCourseDTO{Title: "A", Department: "Engineering", Status: "Active"})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.CreateOwn(instructor, course.CreateCourseDTO{Title: "B", Department: "Engineering", Status: "Draft"})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.CreateOwn(instructor, course.CreateCourseDTO{Title: "C", Department: "Engineering", Status: "Inactive"})
			Expect(err).ToNot(HaveOccurred())

			dash, err := service.DashboardForInstructor(instructor)
			Expect(err).ToNot(HaveOccurred())
			Expect(dash.TotalCourses).To(Equal(3))
			Expect(dash.ActiveCourses).To(Equal(1))
			Expect(dash.DraftCourses).To(Equal(1))
			Expect(dash.User.ID).To(Equal(instructor.ID))
		})
	})

	Describe("module decoration", func() {
		It("should attach content_url and file_type to stored modules", func() {
			c, err := service.CreateAdmin(admin, course.CreateCourseDTO{
				Title:      "Decorated",
				Department: "Engineering",
				Modules: []course.ModuleUpload{
					{Title: "Slides", Filename: "slides.pdf", File: strings.NewReader("x")},
				},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Modules).To(HaveLen(1))
			Expect(c.Modules[0].FileType).To(Equal("pdf"))
			Expect(c.Modules[0].ContentURL).To(HavePrefix("http://localhost:8080/storage/course-content/"))
		})
	})
})
