package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sokrate-backend-go/internal/models"
)

const usersCollection = "users"

// firestoreProfileRepository implements ProfileRepository using Firestore.
type firestoreProfileRepository struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreProfileRepository creates a ProfileRepository backed by the users collection.
func NewFirestoreProfileRepository(client *firestore.Client) (ProfileRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized for ProfileRepository")
	}
	return &firestoreProfileRepository{client: client, now: time.Now}, nil
}

func (r *firestoreProfileRepository) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetProfile operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile with ID '%s': %w", userID, err)
	}
	return decodeProfile(docSnap)
}

func (r *firestoreProfileRepository) SetProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for SetProfile operation")
	}
	ref := r.client.Collection(usersCollection).Doc(userID)
	var result *models.Profile

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := r.readInTx(tx, ref)
		if err != nil {
			return err
		}
		now := r.now().UTC()
		fields := updateFields(update)
		fields["updatedAt"] = now
		if existing == nil {
			fields["createdAt"] = now
			existing = &models.Profile{ID: userID, CreatedAt: now}
		}
		if err := tx.Set(ref, fields, firestore.MergeAll); err != nil {
			return err
		}
		result = applyUpdate(*existing, update, now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set profile with ID '%s': %w", userID, err)
	}
	return result, nil
}

func (r *firestoreProfileRepository) EnsureProfile(ctx context.Context, identity models.Identity) (bool, error) {
	if identity.ID == "" {
		return false, errors.New("identity ID cannot be empty for EnsureProfile operation")
	}
	ref := r.client.Collection(usersCollection).Doc(identity.ID)
	var created bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false
		existing, err := r.readInTx(tx, ref)
		if err != nil {
			return err
		}
		now := r.now().UTC()
		fields := map[string]interface{}{"updatedAt": now}
		if identity.Email != "" {
			fields["email"] = identity.Email
		}
		if identity.DisplayName != "" {
			fields["displayName"] = identity.DisplayName
		}
		if identity.PhotoURL != "" {
			fields["photoURL"] = identity.PhotoURL
		}
		if existing == nil {
			created = true
			fields["plan"] = string(models.PlanFree)
			fields["theme"] = string(models.ThemeSystem)
			fields["createdAt"] = now
		}
		return tx.Set(ref, fields, firestore.MergeAll)
	})
	if err != nil {
		return false, fmt.Errorf("failed to ensure profile with ID '%s': %w", identity.ID, err)
	}
	return created, nil
}

func (r *firestoreProfileRepository) FindByStripeCustomer(ctx context.Context, customerID string) (*models.Profile, error) {
	if customerID == "" {
		return nil, errors.New("customerID cannot be empty for FindByStripeCustomer operation")
	}
	iter := r.client.Collection(usersCollection).Where("stripeCustomerId", "==", customerID).Limit(1).Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no profile for stripe customer '%s': %w", customerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile by stripe customer '%s': %w", customerID, err)
	}
	return decodeProfile(docSnap)
}

// readInTx returns (nil, nil) when the document does not exist.
func (r *firestoreProfileRepository) readInTx(tx *firestore.Transaction, ref *firestore.DocumentRef) (*models.Profile, error) {
	docSnap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return decodeProfile(docSnap)
}

func decodeProfile(docSnap *firestore.DocumentSnapshot) (*models.Profile, error) {
	var profile models.Profile
	if err := docSnap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	profile.ID = docSnap.Ref.ID
	return &profile, nil
}

// updateFields converts a partial update into Firestore merge fields.
func updateFields(u models.ProfileUpdate) map[string]interface{} {
	fields := make(map[string]interface{})
	if u.DisplayName != nil {
		fields["displayName"] = *u.DisplayName
	}
	if u.Email != nil {
		fields["email"] = *u.Email
	}
	if u.PhotoURL != nil {
		fields["photoURL"] = *u.PhotoURL
	}
	if u.Theme != nil {
		fields["theme"] = string(*u.Theme)
	}
	if u.Plan != nil {
		fields["plan"] = string(*u.Plan)
	}
	if u.StripeCustomerID != nil {
		fields["stripeCustomerId"] = *u.StripeCustomerID
	}
	return fields
}

// applyUpdate returns p with u applied, mirroring what the merge writes.
func applyUpdate(p models.Profile, u models.ProfileUpdate, now time.Time) *models.Profile {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.PhotoURL != nil {
		p.PhotoURL = *u.PhotoURL
	}
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.Plan != nil {
		p.Plan = *u.Plan
	}
	if u.StripeCustomerID != nil {
		p.StripeCustomerID = *u.StripeCustomerID
	}
	p.UpdatedAt = now
	return &p
}
