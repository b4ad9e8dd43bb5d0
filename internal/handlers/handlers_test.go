package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v3"

	"badui/internal/config"
	"badui/internal/models"
)

func TestMergeBranding(t *testing.T) {
	cfg := &config.Config{SiteTitle: "Bad UI", SiteTagline: "ouch", SiteFooter: "foot"}

	data := MergeBranding(fiber.Map{}, cfg)
	if data["Title"] != "Bad UI" {
		t.Errorf("Title = %v, want site title", data["Title"])
	}
	if data["SSOEnabled"] != false {
		t.Errorf("SSOEnabled = %v, want false", data["SSOEnabled"])
	}

	data = MergeBranding(fiber.Map{"Title": "Sign in"}, cfg)
	if data["Title"] != "Sign in" {
		t.Errorf("Title = %v, want page title kept", data["Title"])
	}

	cfg.OIDCIssuer = "https://id.example.com"
	cfg.OIDCClientID = "badui"
	if data := MergeBranding(fiber.Map{}, cfg); data["SSOEnabled"] != true {
		t.Errorf("SSOEnabled = %v, want true", data["SSOEnabled"])
	}
}

func TestArticleForm_Validate(t *testing.T) {
	const def = "https://example.com/default.png"

	tests := []struct {
		name          string
		form          articleForm
		wantOK        bool
		wantMsg       string
		wantThumbnail string
	}{
		{"defaults thumbnail", articleForm{HTMLCode: "<p>x</p>"}, true, "", def},
		{"keeps thumbnail", articleForm{HTMLCode: "<p>x</p>", Thumbnail: "https://img.example.com/a.png"}, true, "", "https://img.example.com/a.png"},
		{"html required", articleForm{HTMLCode: "  "}, false, "HTML is required", def},
		{"bad thumbnail", articleForm{HTMLCode: "<p>x</p>", Thumbnail: "ftp://example.com/a.png"}, false, "Thumbnail: URL must use http:// or https:// scheme", "ftp://example.com/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := tt.form.validate(def)
			if ok != tt.wantOK || msg != tt.wantMsg {
				t.Errorf("validate() = (%v, %q), want (%v, %q)", ok, msg, tt.wantOK, tt.wantMsg)
			}
			if tt.form.Thumbnail != tt.wantThumbnail {
				t.Errorf("Thumbnail = %q, want %q", tt.form.Thumbnail, tt.wantThumbnail)
			}
		})
	}
}

func TestArticleForm_RoundTrip(t *testing.T) {
	article := &models.Article{
		Thumbnail:   "https://img.example.com/a.png",
		HTMLCode:    "<p>x</p>",
		ScriptCode:  "alert(1)",
		CSSCode:     "p{}",
		IsAnonymous: true,
	}

	var got models.Article
	formFromArticle(article).apply(&got)
	if got != *article {
		t.Errorf("apply(formFromArticle()) = %+v, want %+v", got, *article)
	}
}
