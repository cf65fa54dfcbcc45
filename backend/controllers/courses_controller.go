package controllers

import (
	"strconv"

	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CoursesController struct {
	Courses *services.CourseService
}

func NewCoursesController(courses *services.CourseService) *CoursesController {
	return &CoursesController{Courses: courses}
}

// CreateCourse godoc
// @Summary Create a course
// @Description Admin only. Multipart form with title, description, category and a "thumbnail" image
// @Tags courses
// @Accept mpfd
// @Produce json
// @Param title formData string true "Course title"
// @Param description formData string true "Course description"
// @Param category formData string true "Course category"
// @Param thumbnail formData file true "Thumbnail image (jpg, jpeg, png, webp)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/create [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var input services.CourseInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse request body")
	}
	if input.CreatedBy == "" {
		input.CreatedBy = strconv.FormatUint(uint64(userID), 10)
	}

	thumbnail, release, err := openUpload(c, "thumbnail")
	if err != nil {
		return err
	}
	defer release()

	course, err := cc.Courses.Create(c.UserContext(), input, thumbnail)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Course created successfully",
		"course":  course,
	})
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Admin only. Partial update; a "version" field makes the write conditional. Optional "thumbnail" file
// @Tags courses
// @Accept json,mpfd
// @Produce json
// @Param courseId path int true "Course ID"
// @Param input body services.CourseUpdateInput false "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{courseId} [put]
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	var input services.CourseUpdateInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.Validation("Cannot parse request body")
		}
	}

	thumbnail, release, err := openUpload(c, "thumbnail")
	if err != nil {
		return err
	}
	defer release()

	result, err := cc.Courses.Update(c.UserContext(), courseID, input, thumbnail)
	if err != nil {
		return err
	}

	response := fiber.Map{
		"message": "Course updated successfully",
		"course":  result.Course,
	}
	if result.CleanupErr != nil {
		response["warning"] = "Previous thumbnail could not be deleted"
	}
	return c.JSON(response)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Admin only. Removes the course, its lectures, enrollments and stored assets
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{courseId} [delete]
func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	if err := cc.Courses.Delete(c.UserContext(), courseID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Course deleted successfully"})
}

// AddLecture godoc
// @Summary Add a lecture
// @Description Admin only. Multipart form with title, description and a "video" file
// @Tags courses
// @Accept mpfd
// @Produce json
// @Param courseId path int true "Course ID"
// @Param title formData string true "Lecture title"
// @Param description formData string false "Lecture description"
// @Param video formData file true "Lecture video (mp4, mkv, mov, avi)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{courseId}/lectures [post]
func (cc *CoursesController) AddLecture(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	var input services.LectureInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse request body")
	}

	video, release, err := openUpload(c, "video")
	if err != nil {
		return err
	}
	defer release()

	course, err := cc.Courses.AddLecture(c.UserContext(), courseID, input, video)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Lecture added successfully",
		"course":  course,
	})
}

// GetEnrolledStudents godoc
// @Summary List students enrolled in a course
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{courseId}/students [get]
func (cc *CoursesController) GetEnrolledStudents(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	students, err := cc.Courses.EnrolledStudents(c.UserContext(), courseID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"students": students})
}

// GetAvailableCourses godoc
// @Summary List all courses
// @Tags courses
// @Produce json
// @Success 200 {array} models.Course
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses [get]
func (cc *CoursesController) GetAvailableCourses(c *fiber.Ctx) error {
	courses, err := cc.Courses.Available(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(courses)
}

// EnrollInCourse godoc
// @Summary Enroll the current student
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{courseId}/enroll [post]
func (cc *CoursesController) EnrollInCourse(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	course, err := cc.Courses.Enroll(c.UserContext(), courseID, userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Successfully enrolled in the course",
		"course":  course,
	})
}

// GetEnrolledCourses godoc
// @Summary Courses the current student is enrolled in
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/enrolled [get]
func (cc *CoursesController) GetEnrolledCourses(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	courses, err := cc.Courses.EnrolledCourses(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"enrolledCourses": courses})
}

// GetCourse godoc
// @Summary Get a course with its lectures
// @Tags courses
// @Produce json
// @Param courseId path int true "Course ID"
// @Success 200 {object} models.Course
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /courses/{courseId} [get]
func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	courseID, err := courseIDParam(c)
	if err != nil {
		return err
	}

	course, err := cc.Courses.Get(c.UserContext(), courseID)
	if err != nil {
		return err
	}

	return c.JSON(course)
}
