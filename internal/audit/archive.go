package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/peoplehub/backoffice/internal/models"
	"gorm.io/gorm"
)

// Archiver exports audit log snapshots to an S3 bucket for retention beyond
// the primary store.
type Archiver struct {
	db      *gorm.DB
	session *session.Session
	bucket  string
}

func NewArchiver(db *gorm.DB, bucket, region string) (*Archiver, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return &Archiver{db: db, session: sess, bucket: bucket}, nil
}

// Export uploads every entry in [from, to) as one JSON object and returns
// the object key.
func (a *Archiver) Export(from, to time.Time) (string, int, error) {
	var entries []models.AuditLog
	err := a.db.
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at").
		Find(&entries).Error
	if err != nil {
		return "", 0, err
	}

	body, err := json.Marshal(map[string]interface{}{
		"exported_at": time.Now(),
		"from":        from,
		"to":          to,
		"count":       len(entries),
		"entries":     entries,
	})
	if err != nil {
		return "", 0, err
	}

	key := fmt.Sprintf("audit/%s/%s.json", to.Format("2006/01"), uuid.New().String())

	svc := s3.New(a.session)
	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", 0, err
	}

	return key, len(entries), nil
}
