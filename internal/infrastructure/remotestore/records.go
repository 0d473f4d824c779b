// Package remotestore maps facilities and vessels onto tenant-scoped
// document collections.
package remotestore

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/harborline/internal/application/assets"
	"github.com/orris-inc/harborline/internal/domain/asset"
	"github.com/orris-inc/harborline/internal/domain/backend"
	"github.com/orris-inc/harborline/internal/infrastructure/docstore"
	"github.com/orris-inc/harborline/internal/shared/biztime"
	"github.com/orris-inc/harborline/internal/shared/logger"
	"github.com/orris-inc/harborline/internal/shared/mapper"
)

const healthchecksCollection = "healthchecks"

var _ assets.RemoteStore = (*Records)(nil)

type Records struct {
	docs   *docstore.Store
	logger logger.Interface
}

func New(docs *docstore.Store, log logger.Interface) *Records {
	return &Records{docs: docs, logger: log}
}

func (r *Records) WatchFacilities(ctx context.Context, ns backend.Namespace, who backend.Identity,
	onSnapshot func([]asset.StorageFacility), onError func(error)) (assets.Subscription, error) {
	collection := ns.Collection(asset.KindFacility.String())

	w, err := r.docs.Watch(ctx, who.ID, collection, func(docs []docstore.Document) {
		items := mapper.MapValid(docs, func(d docstore.Document) (asset.StorageFacility, error) {
			return decodeFacility(d.ID, d.Data)
		}, func(d docstore.Document, err error) {
			r.logger.Warnw("skipping undecodable facility document", "collection", collection, "document_id", d.ID, "error", err)
		})
		asset.SortFacilities(items)
		onSnapshot(items)
	}, onError)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", collection, err)
	}
	return w, nil
}

func (r *Records) WatchVessels(ctx context.Context, ns backend.Namespace, who backend.Identity,
	onSnapshot func([]asset.Vessel), onError func(error)) (assets.Subscription, error) {
	collection := ns.Collection(asset.KindVessel.String())

	w, err := r.docs.Watch(ctx, who.ID, collection, func(docs []docstore.Document) {
		items := mapper.MapValid(docs, func(d docstore.Document) (asset.Vessel, error) {
			return decodeVessel(d.ID, d.Data)
		}, func(d docstore.Document, err error) {
			r.logger.Warnw("skipping undecodable vessel document", "collection", collection, "document_id", d.ID, "error", err)
		})
		asset.SortVessels(items)
		onSnapshot(items)
	}, onError)
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", collection, err)
	}
	return w, nil
}

// CreateFacility stores f without its id and returns the server-assigned id.
func (r *Records) CreateFacility(ctx context.Context, ns backend.Namespace, who backend.Identity, f asset.StorageFacility) (string, error) {
	data, err := encodeFacility(f)
	if err != nil {
		return "", fmt.Errorf("failed to encode facility: %w", err)
	}
	return r.docs.Create(ctx, who.ID, ns.Collection(asset.KindFacility.String()), f.Name, data)
}

// UpdateFacility replaces the stored facility. The stored LastUpdate never
// moves backwards, whatever clock the writer has.
func (r *Records) UpdateFacility(ctx context.Context, ns backend.Namespace, who backend.Identity, f asset.StorageFacility) error {
	collection := ns.Collection(asset.KindFacility.String())

	return r.docs.Update(ctx, who.ID, collection, f.ID, f.Name, func(current []byte) ([]byte, error) {
		if prev, err := decodeFacility(f.ID, current); err == nil {
			f = f.Touched(prev.LastUpdate, f.LastUpdate)
		}
		data, err := encodeFacility(f)
		if err != nil {
			return nil, fmt.Errorf("failed to encode facility: %w", err)
		}
		return data, nil
	})
}

func (r *Records) DeleteFacility(ctx context.Context, ns backend.Namespace, who backend.Identity, id string) error {
	return r.docs.Delete(ctx, who.ID, ns.Collection(asset.KindFacility.String()), id)
}

func (r *Records) CreateVessel(ctx context.Context, ns backend.Namespace, who backend.Identity, v asset.Vessel) (string, error) {
	data, err := encodeVessel(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode vessel: %w", err)
	}
	return r.docs.Create(ctx, who.ID, ns.Collection(asset.KindVessel.String()), v.Name, data)
}

func (r *Records) UpdateVessel(ctx context.Context, ns backend.Namespace, who backend.Identity, v asset.Vessel) error {
	data, err := encodeVessel(v)
	if err != nil {
		return fmt.Errorf("failed to encode vessel: %w", err)
	}
	return r.docs.Update(ctx, who.ID, ns.Collection(asset.KindVessel.String()), v.ID, v.Name, func([]byte) ([]byte, error) {
		return data, nil
	})
}

func (r *Records) DeleteVessel(ctx context.Context, ns backend.Namespace, who backend.Identity, id string) error {
	return r.docs.Delete(ctx, who.ID, ns.Collection(asset.KindVessel.String()), id)
}

// SelfTest writes, reads back and deletes a probe document under the tenant's
// healthchecks collection and reports the round-trip time.
func (r *Records) SelfTest(ctx context.Context, ns backend.Namespace, who backend.Identity) (time.Duration, error) {
	collection := ns.Collection(healthchecksCollection)
	started := time.Now()

	probe := healthcheckDoc{Probe: who.ID, SentAt: biztime.NowUTC()}
	data, err := encodeJSON(probe)
	if err != nil {
		return 0, err
	}

	docID, err := r.docs.Create(ctx, who.ID, collection, "probe", data)
	if err != nil {
		return 0, fmt.Errorf("healthcheck write failed: %w", err)
	}

	doc, err := r.docs.Get(ctx, who.ID, collection, docID)
	if err != nil {
		return 0, fmt.Errorf("healthcheck read failed: %w", err)
	}
	var echoed healthcheckDoc
	if err := decodeJSON(doc.Data, &echoed); err != nil || echoed.Probe != probe.Probe {
		return 0, fmt.Errorf("healthcheck read back a different document")
	}

	if err := r.docs.Delete(ctx, who.ID, collection, docID); err != nil {
		return 0, fmt.Errorf("healthcheck cleanup failed: %w", err)
	}

	latency := time.Since(started)
	r.logger.Infow("remote self-test passed", "namespace", ns, "latency_ms", latency.Milliseconds())
	return latency, nil
}
