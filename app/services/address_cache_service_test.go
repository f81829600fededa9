package services

import (
	"errors"
	"testing"
	"time"

	"github.com/address-cache/app/models"
	"github.com/address-cache/internal/normalizer"
	"github.com/address-cache/internal/tracker"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*AddressCacheService, *clock.Mock) {
	t.Helper()
	logger := zap.NewNop()

	clk := clock.NewMock()
	store, err := newCacheStoreWithClock(50, 5*time.Minute, clk, logger)
	if err != nil {
		t.Fatalf("cannot create cache store: %v", err)
	}

	service := NewAddressCacheService(
		store,
		normalizer.NewAddressNormalizer(logger),
		tracker.NewSignatureTracker(logger),
		NewNotificationHub(logger),
		logger,
	)
	return service, clk
}

// nominatimPayload builds a minimal provider payload
func nominatimPayload(road, suburb, city, state string) models.RawAddressPayload {
	addr := map[string]interface{}{}
	if road != "" {
		addr["road"] = road
	}
	if suburb != "" {
		addr["suburb"] = suburb
	}
	if city != "" {
		addr["city"] = city
	}
	if state != "" {
		addr["state"] = state
	}
	return models.RawAddressPayload{"address": addr}
}

func TestGetOrCompute_ResolvesAndCaches(t *testing.T) {
	service, _ := newTestService(t)

	payload := nominatimPayload("Rua Direita", "Milho Verde", "Serro", "Minas Gerais")

	first, err := service.GetOrCompute(payload)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	if first.Logradouro == nil || *first.Logradouro != "Rua Direita" {
		t.Error("normalization should resolve the street")
	}
	if first.SiglaUF == nil || *first.SiglaUF != "MG" {
		t.Error("sigla should derive from the estado name")
	}

	second, err := service.GetOrCompute(payload)
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	if second != first {
		t.Error("identical payload should be served from cache")
	}

	stats := service.Stats()
	t.Logf("stats: %+v", stats)
	if stats.TotalHits != 1 || stats.TotalItems != 1 {
		t.Errorf("hits = %d items = %d, want 1 and 1", stats.TotalHits, stats.TotalItems)
	}
}

func TestGetOrCompute_NeighborhoodChangeSequence(t *testing.T) {
	// For the sequence A A B B A the neighborhood notification fires on
	// the initial install, on A->B and on B->A; never on the repeats.
	service, _ := newTestService(t)

	var fired []string
	if _, err := service.RegisterCallback(models.LevelNeighborhood, func(details *models.ChangeDetails) {
		fired = append(fired, *details.Current.Bairro)
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	a := nominatimPayload("Rua Direita", "Boa Viagem", "Recife", "Pernambuco")
	b := nominatimPayload("Rua Direita", "Casa Forte", "Recife", "Pernambuco")

	for _, payload := range []models.RawAddressPayload{a, a, b, b, a} {
		if _, err := service.GetOrCompute(payload); err != nil {
			t.Fatalf("GetOrCompute failed: %v", err)
		}
	}

	t.Logf("fired: %v", fired)
	if len(fired) != 3 {
		t.Fatalf("neighborhood fired %d times, want 3 (install, A->B, B->A)", len(fired))
	}
	transitions := fired[1:]
	if transitions[0] != "Casa Forte" || transitions[1] != "Boa Viagem" {
		t.Errorf("transitions = %v, want [Casa Forte Boa Viagem]", transitions)
	}

	// The final A was served from cache, so the hit path ran detection
	if service.Stats().TotalHits == 0 {
		t.Error("expected the repeated payloads to hit the cache")
	}
}

func TestGetOrCompute_MunicipalityRepeatDoesNotFire(t *testing.T) {
	service, _ := newTestService(t)

	fired := 0
	service.RegisterCallback(models.LevelMunicipality, func(*models.ChangeDetails) { fired++ })

	// Two consecutive updates both with municipio="Recife"
	service.GetOrCompute(nominatimPayload("Rua Direita", "Boa Viagem", "Recife", "Pernambuco"))
	service.GetOrCompute(nominatimPayload("Av. Central", "Casa Forte", "Recife", "Pernambuco"))

	if fired != 1 {
		t.Errorf("municipality fired %d times, want 1 (first install only)", fired)
	}
	if service.HasChangedAt(models.LevelMunicipality) {
		t.Error("HasChangedAt(municipality) should be false when municipio repeats")
	}
}

func TestGetOrCompute_CacheHitStillRunsChangeDetection(t *testing.T) {
	// Two different payloads can map to the same normalized address;
	// the resulting no-op is suppressed by signature dedup, not by
	// short-circuiting on the cache hit.
	service, _ := newTestService(t)

	fired := 0
	service.RegisterCallback(models.LevelStreet, func(*models.ChangeDetails) { fired++ })

	structured := models.RawAddressPayload{"address": map[string]interface{}{
		"addr:street": "Rua Direita", "addr:city": "Serro",
	}}
	generic := models.RawAddressPayload{"address": map[string]interface{}{
		"road": "Rua Direita", "city": "Serro",
	}}

	service.GetOrCompute(structured)
	service.GetOrCompute(generic)

	if fired != 1 {
		t.Errorf("street fired %d times, want 1; equal addresses from different inputs must not re-fire", fired)
	}
	if service.Stats().TotalItems != 2 {
		t.Errorf("items = %d, want 2 distinct keys", service.Stats().TotalItems)
	}
}

func TestGetOrCompute_MalformedPayload(t *testing.T) {
	service, _ := newTestService(t)

	observer := &recordingObserver{}
	service.Subscribe(observer)

	address, err := service.GetOrCompute(models.RawAddressPayload{"error": "no results"})
	if err != nil {
		t.Fatalf("malformed payload must not error: %v", err)
	}
	if !address.IsEmpty() {
		t.Error("malformed payload should resolve to the all-null address")
	}
	if address.Pais != models.DefaultPais {
		t.Errorf("pais = %s, want %s", address.Pais, models.DefaultPais)
	}

	// Sentinel key: nothing cached, processing continues
	if service.Stats().TotalItems != 0 {
		t.Error("sentinel key must not populate the cache")
	}
	if observer.updates != 1 {
		t.Error("observers should still see the update")
	}
}

func TestGetOrCompute_AllNullTransitionNotifies(t *testing.T) {
	// Fields becoming unknown is a legitimate change
	service, _ := newTestService(t)

	fired := 0
	service.RegisterCallback(models.LevelNeighborhood, func(*models.ChangeDetails) { fired++ })

	service.GetOrCompute(nominatimPayload("Rua Direita", "Boa Viagem", "Recife", "Pernambuco"))
	service.GetOrCompute(models.RawAddressPayload{"error": "no results"})

	if fired != 2 {
		t.Errorf("neighborhood fired %d times, want 2 (install + became unknown)", fired)
	}
}

func TestGetOrCompute_RejectsReentrantCalls(t *testing.T) {
	service, _ := newTestService(t)

	var reentrantErr error
	service.RegisterCallback(models.LevelStreet, func(*models.ChangeDetails) {
		_, reentrantErr = service.GetOrCompute(nominatimPayload("Av. Central", "", "Recife", ""))
	})

	if _, err := service.GetOrCompute(nominatimPayload("Rua Direita", "", "Serro", "")); err != nil {
		t.Fatalf("outer call failed: %v", err)
	}

	if !errors.Is(reentrantErr, ErrReentrantCall) {
		t.Errorf("reentrant call error = %v, want ErrReentrantCall", reentrantErr)
	}
}

func TestGetOrCompute_TTLExpiryRecomputes(t *testing.T) {
	service, clk := newTestService(t)

	payload := nominatimPayload("Rua Direita", "Milho Verde", "Serro", "Minas Gerais")

	first, _ := service.GetOrCompute(payload)
	clk.Add(6 * time.Minute)
	second, _ := service.GetOrCompute(payload)

	if first == second {
		t.Error("expired entry should be recomputed, not reused")
	}
	if *first.Logradouro != *second.Logradouro {
		t.Error("recomputed address should be structurally identical")
	}
}

func TestClearCache(t *testing.T) {
	service, _ := newTestService(t)

	fired := 0
	service.RegisterCallback(models.LevelNeighborhood, func(*models.ChangeDetails) { fired++ })

	payload := nominatimPayload("Rua Direita", "Boa Viagem", "Recife", "Pernambuco")
	service.GetOrCompute(payload)
	service.ClearCache()

	if service.Stats().TotalItems != 0 {
		t.Error("clear should drop every cached entry")
	}
	if service.GetChangeDetails(models.LevelNeighborhood).Current != nil {
		t.Error("clear should reset the tracker")
	}

	// Same payload fires again after the reset
	service.GetOrCompute(payload)
	if fired != 2 {
		t.Errorf("neighborhood fired %d times, want 2", fired)
	}
}

func TestObserver_SeesEveryUpdate(t *testing.T) {
	service, _ := newTestService(t)

	observer := &recordingObserver{}
	service.Subscribe(observer)

	a := nominatimPayload("Rua Direita", "Boa Viagem", "Recife", "Pernambuco")
	service.GetOrCompute(a)
	service.GetOrCompute(a)

	if observer.updates != 2 {
		t.Fatalf("observer saw %d updates, want 2", observer.updates)
	}
	if len(observer.changed[0]) == 0 {
		t.Error("first update should report changed levels")
	}
	if len(observer.changed[1]) != 0 {
		t.Errorf("no-op update should report no changed levels, got %v", observer.changed[1])
	}

	service.Unsubscribe(observer)
	service.GetOrCompute(a)
	if observer.updates != 2 {
		t.Error("unsubscribed observer should not be notified")
	}
}
