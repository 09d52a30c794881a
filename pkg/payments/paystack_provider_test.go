package payments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"testing"
	"time"
)

func signPaystack(secret string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	p := NewPaystackProvider("sk_test_secret")
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)

	if !p.VerifyWebhookSignature(payload, signPaystack("sk_test_secret", payload)) {
		t.Error("valid signature rejected")
	}
	if p.VerifyWebhookSignature(payload, signPaystack("sk_other_secret", payload)) {
		t.Error("signature under wrong key accepted")
	}
	if p.VerifyWebhookSignature(payload, "") {
		t.Error("empty signature accepted")
	}
	if p.VerifyWebhookSignature([]byte(`{"tampered":true}`), signPaystack("sk_test_secret", payload)) {
		t.Error("tampered payload accepted")
	}
}

func TestParsePaystackTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "millisecond precision",
			value: "2024-11-13T00:00:00.000Z",
			want:  time.Date(2024, 11, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "second precision",
			value: "2024-11-13T10:30:15Z",
			want:  time.Date(2024, 11, 13, 10, 30, 15, 0, time.UTC),
		},
		{
			name:  "offset timezone normalized to UTC",
			value: "2024-11-13T01:00:00+01:00",
			want:  time.Date(2024, 11, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			value:   "not-a-time",
			wantErr: true,
		},
		{
			name:    "empty",
			value:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePaystackTime(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePaystackTime(%q) expected error, got %v", tt.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePaystackTime(%q) error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParsePaystackTime(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func fakeSubscriptionToken(t *testing.T, emailToken string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	claims, _ := json.Marshal(map[string]string{"email_token": emailToken})
	payload := base64.RawURLEncoding.EncodeToString(claims)
	return header + "." + payload + ".signature"
}

func TestExtractEmailToken(t *testing.T) {
	token := fakeSubscriptionToken(t, "tok_abc123")
	link := "https://paystack.com/manage/subscriptions/sub_code?subscription_token=" + token

	got, err := extractEmailToken(link)
	if err != nil {
		t.Fatalf("extractEmailToken() error: %v", err)
	}
	if got != "tok_abc123" {
		t.Errorf("extractEmailToken() = %q, want %q", got, "tok_abc123")
	}

	if _, err := extractEmailToken("https://paystack.com/manage/subscriptions/sub_code"); err == nil {
		t.Error("expected error for link without subscription_token")
	}
	if _, err := extractEmailToken("https://paystack.com/x?subscription_token=not-a-jwt"); err == nil {
		t.Error("expected error for non-JWT token")
	}
}
