package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// TokenVerifier is the part of the Firebase auth client used for Google sign-in.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// App holds the initialized Firebase app and auth client
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
}

// InitFirebase initializes the Firebase application and authentication client.
func InitFirebase(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	firebaseApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	return &App{FirebaseApp: firebaseApp, AuthClient: authClient}, nil
}

// Identity is what Google sign-in needs from a verified ID token.
type Identity struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// IdentityFromToken pulls the profile claims out of a verified token.
func IdentityFromToken(token *auth.Token) (Identity, error) {
	id := Identity{UID: token.UID}
	email, ok := token.Claims["email"].(string)
	if !ok || email == "" {
		return id, fmt.Errorf("firebase token has no email claim")
	}
	id.Email = email
	if name, ok := token.Claims["name"].(string); ok {
		id.Name = name
	}
	if pic, ok := token.Claims["picture"].(string); ok {
		id.Picture = pic
	}
	return id, nil
}
