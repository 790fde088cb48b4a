package archive

import (
	"context"
	"testing"
)

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("invoices", "INV-0325-101", "pdf"); got != "invoices/INV-0325-101.pdf" {
		t.Errorf("ObjectKey = %q", got)
	}
}

func TestNewS3ArchiveRequiresBucket(t *testing.T) {
	if _, err := NewS3Archive(context.Background(), Options{Region: "auto"}); err == nil {
		t.Error("expected an error without a bucket")
	}
}

func TestNewS3ArchiveWithStaticCredentials(t *testing.T) {
	a, err := NewS3Archive(context.Background(), Options{
		Bucket:    "documents",
		Endpoint:  "http://localhost:9000",
		Region:    "auto",
		AccessKey: "key",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.bucket != "documents" {
		t.Errorf("bucket = %q", a.bucket)
	}
}
