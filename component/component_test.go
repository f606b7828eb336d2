package component

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

type fakeComponent struct {
	name     string
	startErr error
	stopErr  error
	health   HealthStatus
	log      *[]string
}

func (f *fakeComponent) Name() string { return f.name }

func (f *fakeComponent) Start(context.Context) error {
	*f.log = append(*f.log, "start:"+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.log = append(*f.log, "stop:"+f.name)
	return f.stopErr
}

func (f *fakeComponent) Health(context.Context) Health {
	return Health{Name: f.name, Status: f.health}
}

func TestRegisterDuplicate(t *testing.T) {
	var log []string
	r := NewRegistry()
	if err := r.Register(&fakeComponent{name: "storage", log: &log}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&fakeComponent{name: "storage", log: &log}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if r.Get("storage") == nil || r.Get("missing") != nil {
		t.Error("Get returned unexpected result")
	}
}

func TestLifecycleOrder(t *testing.T) {
	var log []string
	r := NewRegistry()
	for _, name := range []string{"telemetry", "storage", "server"} {
		_ = r.Register(&fakeComponent{name: name, log: &log})
	}

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	want := []string{
		"start:telemetry", "start:storage", "start:server",
		"stop:server", "stop:storage", "stop:telemetry",
	}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("lifecycle order = %v, want %v", log, want)
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "storage", log: &log})
	_ = r.Register(&fakeComponent{name: "server", startErr: fmt.Errorf("address in use"), log: &log})
	_ = r.Register(&fakeComponent{name: "late", log: &log})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	want := []string{"start:storage", "start:server", "stop:storage"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}

	log = nil
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(log) != 0 {
		t.Errorf("nothing should be left to stop, got %v", log)
	}
}

func TestStopAllJoinsErrors(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "storage", stopErr: fmt.Errorf("busy"), log: &log})
	_ = r.Register(&fakeComponent{name: "server", log: &log})
	_ = r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
	if len(log) != 4 {
		t.Errorf("all started components should be stopped, got %v", log)
	}
}

func TestOverall(t *testing.T) {
	tests := []struct {
		name    string
		results []Health
		want    HealthStatus
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Health{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"degraded", []Health{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", []Health{{Status: StatusDegraded}, {Status: StatusUnhealthy}}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.results); got != tt.want {
				t.Errorf("Overall = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHealthAll(t *testing.T) {
	var log []string
	r := NewRegistry()
	_ = r.Register(&fakeComponent{name: "storage", health: StatusHealthy, log: &log})
	_ = r.Register(&fakeComponent{name: "pipeline", health: StatusDegraded, log: &log})

	results := r.HealthAll(context.Background())
	if len(results) != 2 || results[0].Name != "storage" || results[1].Status != StatusDegraded {
		t.Errorf("unexpected health results %+v", results)
	}
}
