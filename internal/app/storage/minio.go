package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Клиент для хранилища приложенных к заявке файлов
// (схемы инфраструктуры, сайзинги и т.п.)
type MinIOClient struct {
	client     *minio.Client
	bucketName string
}

// NewMinIOClient создает клиент для MinIO
func NewMinIOClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOClient, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// Создаем bucket если не существует
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logrus.Infof("Bucket %s created successfully", bucketName)
	}

	return &MinIOClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// UploadAttachment загружает файл и возвращает имя объекта.
// Имя генерируется на латинице, оригинальное имя хранится в заявке.
func (m *MinIOClient) UploadAttachment(fileData []byte, referenceCode, originalFilename string) (string, error) {
	ctx := context.Background()

	ext := filepath.Ext(originalFilename)
	objectName := fmt.Sprintf("%s_%s_%d%s",
		strings.ToLower(referenceCode),
		uuid.New().String()[:8],
		time.Now().Unix(),
		ext)

	contentType := "application/octet-stream"
	switch strings.ToLower(ext) {
	case ".pdf":
		contentType = "application/pdf"
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".txt":
		contentType = "text/plain"
	}

	reader := bytes.NewReader(fileData)
	_, err := m.client.PutObject(ctx, m.bucketName, objectName, reader, int64(len(fileData)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	logrus.Infof("Attachment %s uploaded successfully", objectName)
	return objectName, nil
}

// DeleteAttachment удаляет объект из MinIO
func (m *MinIOClient) DeleteAttachment(objectName string) error {
	ctx := context.Background()

	err := m.client.RemoveObject(ctx, m.bucketName, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logrus.Infof("Attachment %s deleted successfully", objectName)
	return nil
}

// GetAttachmentURL возвращает временный URL для скачивания (1 час)
func (m *MinIOClient) GetAttachmentURL(objectName string) (string, error) {
	ctx := context.Background()

	url, err := m.client.PresignedGetObject(ctx, m.bucketName, objectName, time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}
