package awss3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/graduation-masterpiece/demo-repository/internal/platform/objectstore"
)

type fakeAPI struct {
	puts    []*s3.PutObjectInput
	bodies  []string
	deletes []*s3.DeleteObjectInput
	putErr  error
}

func (f *fakeAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, string(b))
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutSetsBucketKeyAndContentType(t *testing.T) {
	api := &fakeAPI{}
	st := newStore(api, objectstore.Config{Mode: objectstore.ModeS3, Bucket: "bookcard-images"}, "ap-northeast-2", nil)

	if err := st.Put(context.Background(), "images/1-a.png", strings.NewReader("png"), ""); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(api.puts) != 1 {
		t.Fatalf("expected one put, got %d", len(api.puts))
	}
	in := api.puts[0]
	if aws.ToString(in.Bucket) != "bookcard-images" || aws.ToString(in.Key) != "images/1-a.png" {
		t.Fatalf("bucket/key=%q/%q", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "image/png" {
		t.Fatalf("content type=%q", aws.ToString(in.ContentType))
	}
	if in.ACL != "" {
		t.Fatalf("acl should be unset by default, got %q", in.ACL)
	}
	if api.bodies[0] != "png" {
		t.Fatalf("body=%q", api.bodies[0])
	}
}

func TestPutPublicReadACL(t *testing.T) {
	api := &fakeAPI{}
	st := newStore(api, objectstore.Config{Mode: objectstore.ModeS3, Bucket: "b", PublicReadACL: true}, "us-east-1", nil)
	if err := st.Put(context.Background(), "k.png", strings.NewReader("x"), "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if api.puts[0].ACL != types.ObjectCannedACLPublicRead {
		t.Fatalf("acl=%q", api.puts[0].ACL)
	}
}

func TestPutWrapsError(t *testing.T) {
	boom := errors.New("access denied")
	st := newStore(&fakeAPI{putErr: boom}, objectstore.Config{Mode: objectstore.ModeS3, Bucket: "b"}, "us-east-1", nil)
	err := st.Put(context.Background(), "k.png", strings.NewReader("x"), "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	api := &fakeAPI{}
	st := newStore(api, objectstore.Config{Mode: objectstore.ModeS3, Bucket: "b"}, "us-east-1", nil)
	if err := st.Delete(context.Background(), "images/k.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(api.deletes) != 1 || aws.ToString(api.deletes[0].Key) != "images/k.png" {
		t.Fatalf("deletes=%+v", api.deletes)
	}
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  objectstore.Config
		want string
	}{
		{
			name: "regional aws host",
			cfg:  objectstore.Config{Bucket: "bookcard-images"},
			want: "https://bookcard-images.s3.ap-northeast-2.amazonaws.com/images/1-a.png",
		},
		{
			name: "custom endpoint is path style",
			cfg:  objectstore.Config{Bucket: "bookcard-images", Endpoint: "http://localhost:9000/"},
			want: "http://localhost:9000/bookcard-images/images/1-a.png",
		},
		{
			name: "cdn base",
			cfg:  objectstore.Config{Bucket: "bookcard-images", Endpoint: "http://minio:9000", PublicBaseURL: "https://cdn.example.com"},
			want: "https://cdn.example.com/images/1-a.png",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newStore(&fakeAPI{}, tc.cfg, "ap-northeast-2", nil)
			if got := st.PublicURL("images/1-a.png"); got != tc.want {
				t.Fatalf("PublicURL=%q want %q", got, tc.want)
			}
		})
	}
}

func TestNewRejectsForeignMode(t *testing.T) {
	_, err := New(context.Background(), objectstore.Config{Mode: objectstore.ModeGCS, Bucket: "b"}, nil)
	var ce *objectstore.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected config error, got %v", err)
	}
}
