package publish

import "testing"

func TestParseTarget(t *testing.T) {
	cases := []struct {
		raw     string
		want    Target
		wantErr bool
	}{
		{raw: "s3://my-bucket/recordings/demo.gif", want: Target{Scheme: "s3", Bucket: "my-bucket", Key: "recordings/demo.gif"}},
		{raw: "azure://clips/demo.mp4", want: Target{Scheme: "azure", Bucket: "clips", Key: "demo.mp4"}},
		{raw: "gcs://bucket", want: Target{Scheme: "gcs", Bucket: "bucket", Key: ""}},
		{raw: "b2://bucket/key", want: Target{Scheme: "b2", Bucket: "bucket", Key: "key"}},
		{raw: "local:///tmp/out/demo.gif", want: Target{Scheme: "local", Bucket: "/tmp/out", Key: "demo.gif"}},
		{raw: "not-a-uri", wantErr: true},
		{raw: "ftp://bucket/key", wantErr: true},
		{raw: "s3://", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTarget(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTarget(%q): expected error, got %+v", tc.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTarget(%q): unexpected error: %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}
