package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beeconnect/server/internal/domain/models"
	"github.com/beeconnect/server/internal/repository"
)

const (
	apiariesCollection    = "apiarios"
	hivesCollection       = "colmeia"
	inspectionsCollection = "inspecoes"
	harvestsCollection    = "honey_harvests"
	remindersCollection   = "reminders"
)

// inspectionDocument adds the ISO sort key next to the DD/MM/YYYY date.
type inspectionDocument struct {
	models.Inspection `bson:",inline"`
	SortDate          string `bson:"data_ordem"`
}

// MongoDBRepository implements repository.Store on MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository creates a new MongoDB repository and ensures its indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := newRepository(client, client.Database(dbName))
	if err := r.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func newRepository(client *mongo.Client, db *mongo.Database) *MongoDBRepository {
	return &MongoDBRepository{
		client: client,
		db:     db,
		now:    time.Now,
	}
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		inspectionsCollection: {
			{Keys: bson.D{{Key: "hive_id", Value: 1}, {Key: "data_ordem", Value: -1}, {Key: "seq", Value: -1}}},
		},
		hivesCollection: {
			{Keys: bson.D{{Key: "apiario", Value: 1}}},
		},
		harvestsCollection: {
			{Keys: bson.D{{Key: "apiaryId", Value: 1}, {Key: "date", Value: -1}}},
		},
		remindersCollection: {
			{Keys: bson.D{{Key: "key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "delivered_at", Value: 1}, {Key: "fire_at", Value: 1}}},
		},
	}

	for coll, idx := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

// CreateApiary inserts a new apiary.
func (r *MongoDBRepository) CreateApiary(ctx context.Context, apiary models.Apiary) (models.Apiary, error) {
	apiary.ID = newID()
	if apiary.HiveIDs == nil {
		apiary.HiveIDs = []string{}
	}
	if _, err := r.db.Collection(apiariesCollection).InsertOne(ctx, apiary); err != nil {
		return models.Apiary{}, fmt.Errorf("failed to insert apiary: %w", err)
	}
	return apiary, nil
}

// GetApiary reads one apiary by id.
func (r *MongoDBRepository) GetApiary(ctx context.Context, id string) (models.Apiary, error) {
	var apiary models.Apiary
	if err := r.findOne(ctx, apiariesCollection, id, &apiary); err != nil {
		return models.Apiary{}, fmt.Errorf("get apiary %s: %w", id, err)
	}
	return apiary, nil
}

// ListApiaries returns every apiary ordered by name.
func (r *MongoDBRepository) ListApiaries(ctx context.Context) ([]models.Apiary, error) {
	var out []models.Apiary
	opts := options.Find().SetSort(bson.D{{Key: "nome", Value: 1}})
	if err := r.findAll(ctx, apiariesCollection, bson.M{}, opts, &out); err != nil {
		return nil, fmt.Errorf("list apiaries: %w", err)
	}
	return out, nil
}

// AddHiveToApiary records hiveID in the apiary's hive list.
func (r *MongoDBRepository) AddHiveToApiary(ctx context.Context, apiaryID, hiveID string) error {
	res, err := r.db.Collection(apiariesCollection).UpdateOne(ctx,
		bson.M{"_id": apiaryID},
		bson.M{"$addToSet": bson.M{"colmeias": hiveID}})
	if err != nil {
		return fmt.Errorf("failed to link hive %s to apiary %s: %w", hiveID, apiaryID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("apiary %s: %w", apiaryID, repository.ErrNotFound)
	}
	return nil
}

// CreateHive inserts a new hive.
func (r *MongoDBRepository) CreateHive(ctx context.Context, hive models.Hive) (models.Hive, error) {
	hive.ID = newID()
	if _, err := r.db.Collection(hivesCollection).InsertOne(ctx, hive); err != nil {
		return models.Hive{}, fmt.Errorf("failed to insert hive: %w", err)
	}
	return hive, nil
}

// GetHive reads one hive by id.
func (r *MongoDBRepository) GetHive(ctx context.Context, id string) (models.Hive, error) {
	var hive models.Hive
	if err := r.findOne(ctx, hivesCollection, id, &hive); err != nil {
		return models.Hive{}, fmt.Errorf("get hive %s: %w", id, err)
	}
	return hive, nil
}

// UpdateHive overwrites the editable hive fields.
func (r *MongoDBRepository) UpdateHive(ctx context.Context, id string, update models.HiveUpdate) (models.Hive, error) {
	set := bson.M{
		"nome":            update.Name,
		"tipo":            update.Type,
		"estado":          update.Status,
		"data_instalacao": update.InstalledOn,
		"descricao":       update.Description,
		"notas":           update.Notes,
	}

	var hive models.Hive
	err := r.db.Collection(hivesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&hive)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Hive{}, fmt.Errorf("hive %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return models.Hive{}, fmt.Errorf("failed to update hive %s: %w", id, err)
	}
	return hive, nil
}

// ListHives returns every hive.
func (r *MongoDBRepository) ListHives(ctx context.Context) ([]models.Hive, error) {
	var out []models.Hive
	if err := r.findAll(ctx, hivesCollection, bson.M{}, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}), &out); err != nil {
		return nil, fmt.Errorf("list hives: %w", err)
	}
	return out, nil
}

// ListHivesByApiary returns the hives of one apiary.
func (r *MongoDBRepository) ListHivesByApiary(ctx context.Context, apiaryID string) ([]models.Hive, error) {
	var out []models.Hive
	if err := r.findAll(ctx, hivesCollection, bson.M{"apiario": apiaryID}, options.Find().SetSort(bson.D{{Key: "nome", Value: 1}}), &out); err != nil {
		return nil, fmt.Errorf("list hives of apiary %s: %w", apiaryID, err)
	}
	return out, nil
}

// AppendInspection stores an inspection. Seq is a nanosecond clock reading so later appends sort first.
func (r *MongoDBRepository) AppendInspection(ctx context.Context, rec models.Inspection) (models.Inspection, error) {
	rec.ID = newID()
	rec.Seq = r.now().UnixNano()

	doc := inspectionDocument{Inspection: rec, SortDate: repository.SortDate(rec.Date)}
	if _, err := r.db.Collection(inspectionsCollection).InsertOne(ctx, doc); err != nil {
		return models.Inspection{}, fmt.Errorf("failed to insert inspection: %w", err)
	}
	return rec, nil
}

// ListInspections returns the hive's inspections ordered by date descending.
func (r *MongoDBRepository) ListInspections(ctx context.Context, hiveID string) ([]models.Inspection, error) {
	var docs []inspectionDocument
	opts := options.Find().SetSort(bson.D{{Key: "data_ordem", Value: -1}, {Key: "seq", Value: -1}})
	if err := r.findAll(ctx, inspectionsCollection, bson.M{"hive_id": hiveID}, opts, &docs); err != nil {
		return nil, fmt.Errorf("list inspections of hive %s: %w", hiveID, err)
	}

	out := make([]models.Inspection, len(docs))
	for i, d := range docs {
		out[i] = d.Inspection
	}
	return out, nil
}

// AddHarvest inserts a harvest.
func (r *MongoDBRepository) AddHarvest(ctx context.Context, harvest models.Harvest) (models.Harvest, error) {
	harvest.ID = newID()
	if _, err := r.db.Collection(harvestsCollection).InsertOne(ctx, harvest); err != nil {
		return models.Harvest{}, fmt.Errorf("failed to insert harvest: %w", err)
	}
	harvest.Status = models.HarvestConfirmed
	return harvest, nil
}

// ListHarvests returns the harvests of an apiary, newest first.
func (r *MongoDBRepository) ListHarvests(ctx context.Context, apiaryID string) ([]models.Harvest, error) {
	var out []models.Harvest
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if err := r.findAll(ctx, harvestsCollection, bson.M{"apiaryId": apiaryID}, opts, &out); err != nil {
		return nil, fmt.Errorf("list harvests of apiary %s: %w", apiaryID, err)
	}
	for i := range out {
		out[i].Status = models.HarvestConfirmed
	}
	return out, nil
}

// SaveReminder inserts reminder unless one with the same key exists.
// created is false when the existing reminder is returned instead.
func (r *MongoDBRepository) SaveReminder(ctx context.Context, reminder models.Reminder) (models.Reminder, bool, error) {
	reminder.ID = newID()
	coll := r.db.Collection(remindersCollection)

	_, err := coll.InsertOne(ctx, reminder)
	if err == nil {
		return reminder, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return models.Reminder{}, false, fmt.Errorf("failed to insert reminder: %w", err)
	}

	var existing models.Reminder
	if err := coll.FindOne(ctx, bson.M{"key": reminder.Key}).Decode(&existing); err != nil {
		return models.Reminder{}, false, fmt.Errorf("load reminder %s: %w", reminder.Key, err)
	}
	return existing, false, nil
}

// PendingReminders returns undelivered reminders ordered by fire time.
func (r *MongoDBRepository) PendingReminders(ctx context.Context) ([]models.Reminder, error) {
	var out []models.Reminder
	opts := options.Find().SetSort(bson.D{{Key: "fire_at", Value: 1}})
	if err := r.findAll(ctx, remindersCollection, bson.M{"delivered_at": nil}, opts, &out); err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	return out, nil
}

// ClaimReminder marks the reminder delivered. It reports false if someone else claimed it first.
func (r *MongoDBRepository) ClaimReminder(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.Collection(remindersCollection).UpdateOne(ctx,
		bson.M{"_id": id, "delivered_at": nil},
		bson.M{"$set": bson.M{"delivered_at": at}})
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) findOne(ctx context.Context, coll, id string, out interface{}) error {
	err := r.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

func (r *MongoDBRepository) findAll(ctx context.Context, coll string, filter interface{}, opts *options.FindOptions, out interface{}) error {
	cursor, err := r.db.Collection(coll).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
