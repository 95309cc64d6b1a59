package publish

import (
	"context"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// azureProvider uploads to an Azure Blob Storage container named by Target.Bucket,
// authenticating with a storage account shared key from the environment.
type azureProvider struct {
	container string
	client    *azblob.Client
}

func newAzureProvider(container string) (*azureProvider, error) {
	account := os.Getenv("AZURE_STORAGE_ACCOUNT")
	key := os.Getenv("AZURE_STORAGE_KEY")
	if account == "" || key == "" {
		return nil, fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set")
	}

	cred, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, fmt.Errorf("building shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", account)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating azure blob client: %w", err)
	}

	return &azureProvider{container: container, client: client}, nil
}

func (p *azureProvider) Upload(ctx context.Context, localPath, remotePath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	_, err = p.client.UploadFile(ctx, p.container, remotePath, f, nil)
	if err != nil {
		return "", fmt.Errorf("azure upload: %w", err)
	}
	return fmt.Sprintf("azure://%s/%s", p.container, remotePath), nil
}
