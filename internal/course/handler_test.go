package course_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adiwijaya/course-management/internal/course"
	"github.com/adiwijaya/course-management/internal/user"
)

// Mock service capturing what the handler decoded
type mockCourseService struct {
	course.ServiceAPI

	createdDTO   *course.CreateCourseDTO
	createdActor *user.User
	createErr    error
}

func (m *mockCourseService) CreateAdmin(actor *user.User, dto course.CreateCourseDTO) (*course.Course, error) {
	m.createdActor = actor
	m.createdDTO = &dto
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &course.Course{ID: "c-1", Title: dto.Title, Department: dto.Department}, nil
}

var _ = Describe("CourseHandler", func() {
	var (
		handler *course.Handler
		service *mockCourseService
		admin   *user.User
	)

	BeforeEach(func() {
		service = &mockCourseService{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = course.NewHandler(service, logger)
		admin = &user.User{ID: 1, Role: user.RoleAdmin, Status: user.StatusActive}
	})

	Describe("AdminCreate", func() {
		It("should decode a JSON body", func() {
			body, _ := json.Marshal(map[string]any{
				"title":      "Go Fundamentals",
				"department": "Engineering",
			})
			req := httptest.NewRequest(http.MethodPost, "/admin/courses", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req = req.WithContext(user.NewContext(req.Context(), admin))

			rec := httptest.NewRecorder()
			handler.AdminCreate(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(service.createdDTO.Title).To(Equal("Go Fundamentals"))
			Expect(service.createdActor.ID).To(Equal(admin.ID))
		})

		It("should reassemble the bracketed multipart module fields in order", func() {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			Expect(w.WriteField("title", "Go Fundamentals")).To(Succeed())
			Expect(w.WriteField("department", "Engineering")).To(Succeed())
			Expect(w.WriteField("modules[1][title]", "Second")).To(Succeed())
			Expect(w.WriteField("modules[0][title]", "First")).To(Succeed())

			part, err := w.CreateFormFile("modules[0][content]", "first.pdf")
			Expect(err).ToNot(HaveOccurred())
			_, err = part.Write([]byte("pdf-bytes"))
			Expect(err).ToNot(HaveOccurred())

			part, err = w.CreateFormFile("modules[1][content]", "second.mp4")
			Expect(err).ToNot(HaveOccurred())
			_, err = part.Write([]byte("mp4-bytes"))
			Expect(err).ToNot(HaveOccurred())
			Expect(w.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/admin/courses", &buf)
			req.Header.Set("Content-Type", w.FormDataContentType())
			req = req.WithContext(user.NewContext(req.Context(), admin))

			rec := httptest.NewRecorder()
			handler.AdminCreate(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			dto := service.createdDTO
			Expect(dto.Title).To(Equal("Go Fundamentals"))
			Expect(dto.Modules).To(HaveLen(2))
			Expect(dto.Modules[0].Title).To(Equal("First"))
			Expect(dto.Modules[0].Filename).To(Equal("first.pdf"))
			Expect(dto.Modules[1].Title).To(Equal("Second"))
			Expect(dto.Modules[1].Filename).To(Equal("second.mp4"))

			data, err := io.ReadAll(dto.Modules[0].File)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal("pdf-bytes"))
		})

		It("should keep a title-only module entry with no file attached", func() {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			Expect(w.WriteField("title", "Go Fundamentals")).To(Succeed())
			Expect(w.WriteField("department", "Engineering")).To(Succeed())
			Expect(w.WriteField("modules[0][title]", "Lonely title")).To(Succeed())
			Expect(w.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/admin/courses", &buf)
			req.Header.Set("Content-Type", w.FormDataContentType())
			req = req.WithContext(user.NewContext(req.Context(), admin))

			rec := httptest.NewRecorder()
			handler.AdminCreate(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(service.createdDTO.Modules).To(HaveLen(1))
			Expect(service.createdDTO.Modules[0].File).To(BeNil())
		})

		It("should answer 401 when no identity is in the context", func() {
			req := httptest.NewRequest(http.MethodPost, "/admin/courses", bytes.NewReader([]byte(`{}`)))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			handler.AdminCreate(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
