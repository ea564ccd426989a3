package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ManuelReschke/NewsDesk/app/models"
)

// Collection names match the ones the site has always used in MongoDB.
const (
	mongoNewsCollection      = "news"
	mongoQuestionsCollection = "questions"
	mongoUsersCollection     = "users"
)

// NewMongoRepositories creates repositories on a MongoDB database. client may
// be nil when the caller owns the connection lifecycle.
func NewMongoRepositories(client *mongo.Client, db *mongo.Database) *Repositories {
	repos := &Repositories{
		Driver:   DriverMongo,
		News:     &newsMongoRepository{col: db.Collection(mongoNewsCollection)},
		Question: &questionMongoRepository{col: db.Collection(mongoQuestionsCollection)},
		User:     &userMongoRepository{col: db.Collection(mongoUsersCollection)},
	}
	if client != nil {
		repos.close = client.Disconnect
	}
	return repos
}

// EnsureMongoIndexes creates the unique login index that backs the
// duplicate-login check.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(mongoUsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "login", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("login_unique"),
	})
	if err != nil {
		return unavailable("create login index", err)
	}
	return nil
}

type newsDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Image     *string            `bson:"image,omitempty"`
	Date      string             `bson:"date"`
	CreatedAt time.Time          `bson:"createdAt"`
	Comments  []models.Comment   `bson:"comments"`
}

func (d newsDocument) toModel() models.News {
	comments := d.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return models.News{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Image:     d.Image,
		Date:      d.Date,
		CreatedAt: d.CreatedAt,
		Comments:  comments,
	}
}

// newsMongoRepository implements the NewsRepository interface on MongoDB
type newsMongoRepository struct {
	col *mongo.Collection
}

// List returns all news sorted by ObjectID, newest first
func (r *newsMongoRepository) List(ctx context.Context) ([]models.News, error) {
	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, unavailable("list news", err)
	}
	var docs []newsDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode news", err)
	}

	news := make([]models.News, 0, len(docs))
	for _, d := range docs {
		news = append(news, d.toModel())
	}
	return news, nil
}

// GetByID retrieves a news post by its ObjectID hex string
func (r *newsMongoRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc newsDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get news", err)
	}
	news := doc.toModel()
	return &news, nil
}

// Create inserts the post with a fresh ObjectID
func (r *newsMongoRepository) Create(ctx context.Context, news *models.News) error {
	if news.Comments == nil {
		news.Comments = []models.Comment{}
	}
	doc := newsDocument{
		ID:        primitive.NewObjectID(),
		Title:     news.Title,
		Content:   news.Content,
		Image:     news.Image,
		Date:      news.Date,
		CreatedAt: news.CreatedAt,
		Comments:  news.Comments,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return unavailable("insert news", err)
	}
	news.ID = doc.ID.Hex()
	return nil
}

// AppendComment pushes the comment in a single-document update
func (r *newsMongoRepository) AppendComment(ctx context.Context, newsID string, comment models.Comment) error {
	oid, err := primitive.ObjectIDFromHex(newsID)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$push": bson.M{"comments": comment}})
	if err != nil {
		return unavailable("append comment", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *newsMongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, unavailable("count news", err)
	}
	return n, nil
}

type questionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Contact   string             `bson:"contact"`
	Question  string             `bson:"question"`
	Date      string             `bson:"date"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// questionMongoRepository implements the QuestionRepository interface on MongoDB
type questionMongoRepository struct {
	col *mongo.Collection
}

func (r *questionMongoRepository) List(ctx context.Context) ([]models.Question, error) {
	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, unavailable("list questions", err)
	}
	var docs []questionDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode questions", err)
	}

	questions := make([]models.Question, 0, len(docs))
	for _, d := range docs {
		questions = append(questions, models.Question{
			ID:        d.ID.Hex(),
			Name:      d.Name,
			Contact:   d.Contact,
			Question:  d.Question,
			Date:      d.Date,
			CreatedAt: d.CreatedAt,
		})
	}
	return questions, nil
}

func (r *questionMongoRepository) Create(ctx context.Context, question *models.Question) error {
	doc := questionDocument{
		ID:        primitive.NewObjectID(),
		Name:      question.Name,
		Contact:   question.Contact,
		Question:  question.Question,
		Date:      question.Date,
		CreatedAt: question.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return unavailable("insert question", err)
	}
	question.ID = doc.ID.Hex()
	return nil
}

func (r *questionMongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, unavailable("count questions", err)
	}
	return n, nil
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Login     string             `bson:"login"`
	Password  string             `bson:"pass"`
	Email     string             `bson:"email,omitempty"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// userMongoRepository implements the UserRepository interface on MongoDB
type userMongoRepository struct {
	col *mongo.Collection
}

func (d userDocument) toModel() models.User {
	return models.User{
		ID:        d.ID.Hex(),
		Login:     d.Login,
		Password:  d.Password,
		Email:     d.Email,
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
	}
}

// List returns all users in insertion order
func (r *userMongoRepository) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, unavailable("list users", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode users", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (r *userMongoRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"login": login}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get user", err)
	}
	user := doc.toModel()
	return &user, nil
}

// Create relies on the unique login index for the duplicate check
func (r *userMongoRepository) Create(ctx context.Context, user *models.User) error {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Login:     user.Login,
		Password:  user.Password,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return unavailable("insert user", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *userMongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, unavailable("count users", err)
	}
	return n, nil
}
