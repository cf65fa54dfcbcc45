package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"coursehub/backend/models"
	"coursehub/backend/storage"
	"coursehub/backend/utils"

	"gorm.io/gorm"
)

const (
	msgCourseNotFound = "Course not found"
	msgCourseModified = "Course was modified by another request"
)

type CourseInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required"`
	Category    string `json:"category" form:"category" validate:"required,max=100"`
	CreatedBy   string `json:"createdBy" form:"createdBy"`
}

// CourseUpdateInput carries partial overrides; empty fields keep their value.
// A non-zero Version must match the stored one.
type CourseUpdateInput struct {
	Title       string `json:"title" form:"title" validate:"omitempty,max=200"`
	Description string `json:"description" form:"description"`
	Category    string `json:"category" form:"category" validate:"omitempty,max=100"`
	CreatedBy   string `json:"createdBy" form:"createdBy"`
	Version     int    `json:"version" form:"version" validate:"gte=0"`
}

type LectureInput struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description"`
}

// UpdateResult reports a committed update. CleanupErr is set when the previous
// thumbnail could not be removed from the asset store.
type UpdateResult struct {
	Course     *models.Course
	CleanupErr error
}

type StudentSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type CourseService struct {
	db     *gorm.DB
	assets storage.AssetStore
	logger *slog.Logger
	now    Clock
}

func NewCourseService(db *gorm.DB, assets storage.AssetStore, logger *slog.Logger) *CourseService {
	return &CourseService{db: db, assets: assets, logger: logger, now: systemClock}
}

// Create uploads the thumbnail and persists an empty course referencing it.
func (s *CourseService) Create(ctx context.Context, in CourseInput, thumbnail *storage.UploadInput) (*models.Course, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if thumbnail == nil {
		return nil, utils.Validation("No file uploaded")
	}

	thumbnail.Folder = storage.FolderThumbnails
	asset, err := s.assets.Upload(ctx, *thumbnail)
	if err != nil {
		return nil, utils.Upstream("Failed to upload file", err)
	}

	course := &models.Course{
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		CreatedBy:    in.CreatedBy,
		Thumbnail:    asset,
		LectureCount: 0,
		Version:      1,
	}
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		discardAsset(ctx, s.assets, s.logger, asset.PublicID)
		return nil, utils.Internal("Failed to create course", err)
	}

	course.Lectures = []models.Lecture{}
	course.EnrolledStudents = []uint{}
	s.logger.InfoContext(ctx, "course created", "course_id", course.ID, "created_by", course.CreatedBy)
	return course, nil
}

func (s *CourseService) Get(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&course, id).Error
	if err != nil {
		return nil, lookupError(err, msgCourseNotFound)
	}

	courses := []models.Course{course}
	if err := s.attachEnrollments(ctx, courses); err != nil {
		return nil, err
	}
	return &courses[0], nil
}

// Update merges the supplied fields. A new thumbnail is uploaded first; the old
// one is removed only after the versioned write succeeds and before it commits.
// A failed removal does not block the update and is returned in UpdateResult.CleanupErr.
func (s *CourseService) Update(ctx context.Context, id uint, in CourseUpdateInput, thumbnail *storage.UploadInput) (*UpdateResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return nil, lookupError(err, msgCourseNotFound)
	}
	if in.Version != 0 && in.Version != course.Version {
		return nil, utils.Conflict(msgCourseModified)
	}

	updates := map[string]interface{}{
		"version":    course.Version + 1,
		"updated_at": s.now(),
	}
	if in.Title != "" {
		updates["title"] = in.Title
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if in.Category != "" {
		updates["category"] = in.Category
	}
	if in.CreatedBy != "" {
		updates["created_by"] = in.CreatedBy
	}

	result := &UpdateResult{}
	var uploaded, replaced models.Asset
	if thumbnail != nil {
		thumbnail.Folder = storage.FolderThumbnails
		asset, err := s.assets.Upload(ctx, *thumbnail)
		if err != nil {
			return nil, utils.Upstream("Failed to upload file", err)
		}
		uploaded = asset
		replaced = course.Thumbnail
		updates["thumbnail_public_id"] = asset.PublicID
		updates["thumbnail_secure_url"] = asset.SecureURL
	}

	// The version check runs first so a lost race never touches the current thumbnail.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Course{}).
			Where("id = ? AND version = ?", id, course.Version).
			Updates(updates)
		if res.Error != nil {
			return utils.Internal("Failed to update course", res.Error)
		}
		if res.RowsAffected != 1 {
			return utils.Conflict(msgCourseModified)
		}

		if storage.IsManaged(replaced.PublicID) {
			if err := s.assets.Delete(ctx, replaced.PublicID); err != nil {
				s.logger.WarnContext(ctx, "could not delete previous thumbnail",
					"course_id", id, "public_id", replaced.PublicID, "error", err)
				result.CleanupErr = err
			}
		}
		return nil
	})
	if err != nil {
		if !uploaded.IsZero() {
			discardAsset(ctx, s.assets, s.logger, uploaded.PublicID)
		}
		return nil, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Course = updated
	return result, nil
}

// Delete removes the thumbnail first and then the course with its lectures
// and enrollments. Lecture videos are removed afterwards, best-effort.
func (s *CourseService) Delete(ctx context.Context, id uint) error {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return lookupError(err, msgCourseNotFound)
	}

	var videos []string
	if err := s.db.WithContext(ctx).Model(&models.Lecture{}).
		Where("course_id = ?", id).
		Pluck("video_public_id", &videos).Error; err != nil {
		return utils.Internal("Could not query database", err)
	}

	if storage.IsManaged(course.Thumbnail.PublicID) {
		if err := s.assets.Delete(ctx, course.Thumbnail.PublicID); err != nil {
			return utils.Upstream("Failed to delete course thumbnail", err)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Lecture{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Course{}, id).Error
	})
	if err != nil {
		return utils.Internal("Failed to delete course", err)
	}

	for _, publicID := range videos {
		if !storage.IsManaged(publicID) {
			continue
		}
		if err := s.assets.Delete(ctx, publicID); err != nil {
			s.logger.WarnContext(ctx, "could not delete lecture video",
				"course_id", id, "public_id", publicID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "course deleted", "course_id", id)
	return nil
}

// AddLecture uploads the video and appends the lecture. The lecture insert and
// the lecture_count increment share one transaction.
func (s *CourseService) AddLecture(ctx context.Context, courseID uint, in LectureInput, video *storage.UploadInput) (*models.Course, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if video == nil {
		return nil, utils.Validation("Video file not uploaded")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	if count == 0 {
		return nil, utils.NotFoundError(msgCourseNotFound)
	}

	video.Folder = storage.FolderLectures
	asset, err := s.assets.Upload(ctx, *video)
	if err != nil {
		return nil, utils.Upstream("Failed to upload video", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
			"lecture_count": gorm.Expr("lecture_count + 1"),
			"version":       gorm.Expr("version + 1"),
			"updated_at":    s.now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var course models.Course
		if err := tx.Select("id", "lecture_count").First(&course, courseID).Error; err != nil {
			return err
		}

		lecture := models.Lecture{
			CourseID:    courseID,
			Position:    course.LectureCount,
			Title:       in.Title,
			Description: in.Description,
			Video:       asset,
		}
		return tx.Create(&lecture).Error
	})
	if err != nil {
		discardAsset(ctx, s.assets, s.logger, asset.PublicID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError(msgCourseNotFound)
		}
		return nil, utils.Internal("Failed to add lecture", err)
	}

	s.logger.InfoContext(ctx, "lecture added", "course_id", courseID)
	return s.Get(ctx, courseID)
}

// Enroll adds userID to the course. The composite key on enrollments
// guarantees a single row even when two requests race.
func (s *CourseService) Enroll(ctx context.Context, courseID, userID uint) (*models.Course, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "role").First(&user, userID).Error; err != nil {
		return nil, lookupError(err, msgUserNotFound)
	}
	if user.Role != models.RoleStudent {
		return nil, utils.NewError(utils.ErrRoleViolation, "Only students can enroll in courses")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	if count == 0 {
		return nil, utils.NotFoundError(msgCourseNotFound)
	}

	if err := s.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error; err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	if count > 0 {
		return nil, utils.Conflict("User is already enrolled in this course")
	}

	enrollment := models.Enrollment{CourseID: courseID, UserID: userID, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.Conflict("User is already enrolled in this course")
		}
		return nil, utils.Internal("Failed to enroll in course", err)
	}

	s.logger.InfoContext(ctx, "student enrolled", "course_id", courseID, "user_id", userID)
	return s.Get(ctx, courseID)
}

func (s *CourseService) EnrolledStudents(ctx context.Context, courseID uint) ([]StudentSummary, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	if count == 0 {
		return nil, utils.NotFoundError(msgCourseNotFound)
	}

	students := []StudentSummary{}
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("users.id, users.username, users.email").
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id = ?", courseID).
		Order("users.id").
		Scan(&students).Error
	if err != nil {
		return nil, utils.Internal("Failed to fetch enrolled students", err)
	}
	return students, nil
}

func (s *CourseService) EnrolledCourses(ctx context.Context, userID uint) ([]models.Course, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, utils.Internal("Could not query database", err)
	}
	if count == 0 {
		return nil, utils.NotFoundError(msgUserNotFound)
	}

	courses := []models.Course{}
	err := s.db.WithContext(ctx).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", userID).
		Order("courses.id").
		Find(&courses).Error
	if err != nil {
		return nil, utils.Internal("Failed to retrieve enrolled courses", err)
	}
	if err := s.attachEnrollments(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Available lists the catalog; an empty catalog is reported as NotFound.
func (s *CourseService) Available(ctx context.Context) ([]models.Course, error) {
	courses := []models.Course{}
	err := s.db.WithContext(ctx).
		Preload("Lectures", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("id").
		Find(&courses).Error
	if err != nil {
		return nil, utils.Internal("Failed to fetch courses", err)
	}
	if len(courses) == 0 {
		return nil, utils.NotFoundError("No courses available")
	}
	if err := s.attachEnrollments(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CourseService) attachEnrollments(ctx context.Context, courses []models.Course) error {
	if len(courses) == 0 {
		return nil
	}

	ids := make([]uint, len(courses))
	index := make(map[uint]int, len(courses))
	for i := range courses {
		ids[i] = courses[i].ID
		index[courses[i].ID] = i
		courses[i].EnrolledStudents = []uint{}
		if courses[i].Lectures == nil {
			courses[i].Lectures = []models.Lecture{}
		}
	}

	var rows []models.Enrollment
	if err := s.db.WithContext(ctx).
		Where("course_id IN ?", ids).
		Order("user_id").
		Find(&rows).Error; err != nil {
		return utils.Internal("Could not query database", err)
	}
	for _, row := range rows {
		i := index[row.CourseID]
		courses[i].EnrolledStudents = append(courses[i].EnrolledStudents, row.UserID)
	}
	return nil
}
