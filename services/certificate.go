package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lms/models"
	courseModels "lms/models/course"
)

// CertificateMailer notifies a learner that a certificate was issued.
// Implementations must not block issuance; send from a goroutine.
type CertificateMailer interface {
	SendCertificateIssued(email, name, courseTitle, serialHash string)
}

// CertificateService mints and verifies course completion certificates.
// Exactly-once issuance is enforced by the (user_id, course_id) unique
// index, not by any application-level lock: the insert is attempted after
// the eligibility check and a duplicate-key error means a concurrent caller
// already won the race, which is treated as success.
type CertificateService struct {
	db     *gorm.DB
	mailer CertificateMailer
}

func NewCertificateService(db *gorm.DB, mailer CertificateMailer) *CertificateService {
	return &CertificateService{db: db, mailer: mailer}
}

// CertificateInfo is the public face of a certificate, enriched with the
// course and user records it was issued against
type CertificateInfo struct {
	ID                uint      `json:"id"`
	SerialHash        string    `json:"serial_hash"`
	CourseTitle       string    `json:"course_title"`
	CourseDescription string    `json:"course_description"`
	LearnerName       string    `json:"learner_name"`
	CreatorName       string    `json:"creator_name"`
	IssuedAt          time.Time `json:"issued_at"`
}

// VerificationResult is returned by Verify. Valid is false for any serial
// hash with no matching row; an unknown and a malformed hash are not
// distinguishable.
type VerificationResult struct {
	Valid       bool             `json:"valid"`
	Certificate *CertificateInfo `json:"certificate,omitempty"`
}

// CertificateStats summarizes issuance for one course (creator view)
type CertificateStats struct {
	TotalCertificatesIssued  int64 `json:"total_certificates_issued"`
	CertificatesLast30Days   int64 `json:"certificates_last_30_days"`
	CertificatesLast7Days    int64 `json:"certificates_last_7_days"`
	UniqueCertificateHolders int64 `json:"unique_certificate_holders"`
}

// IssueIfEligible mints a certificate for (userID, courseID) if the user
// has completed every lesson of the course and no certificate exists yet.
// Returns the certificate (existing or new) when one exists after the call,
// or nil when the user is not yet eligible. Safe to call concurrently and
// repeatedly.
func (s *CertificateService) IssueIfEligible(userID, courseID uint) (*courseModels.Certificate, error) {
	var existing courseModels.Certificate
	err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	completion, err := evaluateCourseCompletion(s.db, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !completion.IsComplete {
		return nil, nil
	}

	cert := courseModels.Certificate{
		UserID:     userID,
		CourseID:   courseID,
		SerialHash: newSerialHash(userID, courseID),
		IssuedAt:   time.Now(),
	}

	if err := s.db.Create(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race; the concurrent winner's row is the certificate.
			if err := s.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	s.notifyIssued(cert)

	return &cert, nil
}

// Verify looks up a certificate purely by its serial hash. No
// authentication: knowledge of the hash is the capability to read the
// authenticity facts.
func (s *CertificateService) Verify(serialHash string) (*VerificationResult, error) {
	var cert courseModels.Certificate
	err := s.db.Where("serial_hash = ?", serialHash).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VerificationResult{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}

	info, err := s.certificateInfo(cert)
	if err != nil {
		return nil, err
	}

	return &VerificationResult{Valid: true, Certificate: info}, nil
}

// ListForUser returns the user's certificates, newest first, enriched with
// course and creator details.
func (s *CertificateService) ListForUser(userID uint, page, limit int) ([]CertificateInfo, int64, error) {
	var total int64
	if err := s.db.Model(&courseModels.Certificate{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var certs []courseModels.Certificate
	if err := s.db.Where("user_id = ?", userID).
		Order("issued_at desc").
		Offset(offset).Limit(limit).
		Find(&certs).Error; err != nil {
		return nil, 0, err
	}

	result := make([]CertificateInfo, len(certs))
	for i, cert := range certs {
		info, err := s.certificateInfo(cert)
		if err != nil {
			return nil, 0, err
		}
		result[i] = *info
	}

	return result, total, nil
}

// CourseStats returns issuance statistics for a course owned by creatorID
func (s *CertificateService) CourseStats(creatorID, courseID uint) (*CertificateStats, error) {
	var course courseModels.Course
	if err := s.db.Where("id = ? AND creator_id = ? AND is_deleted = ?", courseID, creatorID, false).First(&course).Error; err != nil {
		return nil, ErrNotFound
	}

	stats := &CertificateStats{}

	if err := s.db.Model(&courseModels.Certificate{}).
		Where("course_id = ?", courseID).
		Count(&stats.TotalCertificatesIssued).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&courseModels.Certificate{}).
		Where("course_id = ? AND issued_at >= ?", courseID, time.Now().AddDate(0, 0, -30)).
		Count(&stats.CertificatesLast30Days).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&courseModels.Certificate{}).
		Where("course_id = ? AND issued_at >= ?", courseID, time.Now().AddDate(0, 0, -7)).
		Count(&stats.CertificatesLast7Days).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&courseModels.Certificate{}).
		Where("course_id = ?", courseID).
		Distinct("user_id").
		Count(&stats.UniqueCertificateHolders).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// SweepMissing reconciles certificates for learners who completed a course
// without one being minted, e.g. when issuance failed after the progress
// write. Issuance is idempotent so the sweep is safe to run any time.
func (s *CertificateService) SweepMissing() (int, error) {
	var enrollments []courseModels.Enrollment
	if err := s.db.Model(&courseModels.Enrollment{}).
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.is_deleted = ? AND courses.status = ?", false, courseModels.StatusPublished).
		Select("enrollments.*").
		Find(&enrollments).Error; err != nil {
		return 0, err
	}

	issued := 0
	for _, enrollment := range enrollments {
		var existing courseModels.Certificate
		err := s.db.Where("user_id = ? AND course_id = ?", enrollment.UserID, enrollment.CourseID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return issued, err
		}

		cert, err := s.IssueIfEligible(enrollment.UserID, enrollment.CourseID)
		if err != nil {
			return issued, err
		}
		if cert != nil {
			issued++
		}
	}

	return issued, nil
}

func (s *CertificateService) certificateInfo(cert courseModels.Certificate) (*CertificateInfo, error) {
	info := &CertificateInfo{
		ID:         cert.ID,
		SerialHash: cert.SerialHash,
		IssuedAt:   cert.IssuedAt,
	}

	var course courseModels.Course
	if err := s.db.First(&course, cert.CourseID).Error; err != nil {
		return nil, err
	}
	info.CourseTitle = course.Title
	info.CourseDescription = course.Description

	var learner models.User
	if err := s.db.First(&learner, cert.UserID).Error; err != nil {
		return nil, err
	}
	info.LearnerName = learner.Name

	var creator models.User
	if err := s.db.First(&creator, course.CreatorID).Error; err != nil {
		return nil, err
	}
	info.CreatorName = creator.Name

	return info, nil
}

func (s *CertificateService) notifyIssued(cert courseModels.Certificate) {
	if s.mailer == nil {
		return
	}

	var learner models.User
	if err := s.db.First(&learner, cert.UserID).Error; err != nil || learner.Email == "" {
		return
	}
	var course courseModels.Course
	if err := s.db.First(&course, cert.CourseID).Error; err != nil {
		return
	}

	// Notify Learner (Async)
	go s.mailer.SendCertificateIssued(learner.Email, learner.Name, course.Title, cert.SerialHash)
}

// newSerialHash derives the certificate serial: a 64-character hex SHA-256
// digest over a unique-per-call input.
func newSerialHash(userID, courseID uint) string {
	input := fmt.Sprintf("%d-%d-%d-%s", userID, courseID, time.Now().UnixNano(), uuid.NewString())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
