package app

import (
	"context"
	"testing"

	"novastore/internal/domain"
)

func TestProfileService_Defaults(t *testing.T) {
	svc := NewProfileService(newMapStore())
	got, err := svc.Load(context.Background(), testViewer)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.ProfileSettings{ProfileEmail: "v@x.com", ReceiveOrderAlerts: true}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestProfileService_SaveLoad(t *testing.T) {
	store := newMapStore()
	svc := NewProfileService(store)
	ctx := context.Background()

	settings := domain.ProfileSettings{
		FullName:               "Vera Viewer",
		ProfileEmail:           "vera@example.com",
		City:                   "Izmir",
		ReceiveOrderAlerts:     false,
		ReceiveMarketingEmails: true,
	}
	if err := svc.Save(ctx, testViewer, settings); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Load(ctx, testViewer)
	if err != nil {
		t.Fatal(err)
	}
	if got != settings {
		t.Errorf("expected %+v, got %+v", settings, got)
	}

	other := domain.SessionUser{UserID: "viewer-2", Email: "w@x.com", Role: domain.RoleViewer}
	got, err = svc.Load(ctx, other)
	if err != nil {
		t.Fatal(err)
	}
	if got.FullName != "" {
		t.Error("profiles leaked between users")
	}
}

func TestProfileService_FieldFallback(t *testing.T) {
	store := newMapStore()
	store.data[domain.ProfileKey(testViewer.UserID)] = []byte(`{"fullName": 7, "city": "Ankara", "receiveOrderAlerts": "no"}`)
	svc := NewProfileService(store)

	got, err := svc.Load(context.Background(), testViewer)
	if err != nil {
		t.Fatal(err)
	}
	if got.FullName != "" || got.City != "Ankara" || !got.ReceiveOrderAlerts || got.ProfileEmail != "v@x.com" {
		t.Errorf("unexpected fallback result %+v", got)
	}

	store.data[domain.ProfileKey(testViewer.UserID)] = []byte(`garbage`)
	got, err = svc.Load(context.Background(), testViewer)
	if err != nil {
		t.Fatal(err)
	}
	if got != DefaultProfile(testViewer) {
		t.Errorf("expected defaults for corrupt profile, got %+v", got)
	}
}
