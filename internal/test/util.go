// Package test starts DynamoDB Local for the store integration tests.
package test

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	LOCAL_DDB_PORT = 8000
	TABLE_NAME     = "RecipeData"
	INDEX_NAME     = "GS1"
)

func keySchema(hash string, sort string) []types.KeySchemaElement {
	return []types.KeySchemaElement{
		{
			AttributeName: aws.String(hash),
			KeyType:       types.KeyTypeHash,
		},
		{
			AttributeName: aws.String(sort),
			KeyType:       types.KeyTypeRange,
		},
	}
}

// CreateTable creates the single table with its GS1 index and waits for it.
func CreateTable(client *dynamodb.Client) (string, error) {
	attributes := []types.AttributeDefinition{}
	for _, name := range []string{"PK", "SK", "GS1-PK", "GS1-SK"} {
		attributes = append(attributes, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}
	output, err := client.CreateTable(context.TODO(), &dynamodb.CreateTableInput{
		TableName:            aws.String(TABLE_NAME),
		KeySchema:            keySchema("PK", "SK"),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: attributes,
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(INDEX_NAME),
				KeySchema: keySchema("GS1-PK", "GS1-SK"),
				Projection: &types.Projection{
					ProjectionType: types.ProjectionTypeAll,
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	waiter := dynamodb.NewTableExistsWaiter(client, func(tewo *dynamodb.TableExistsWaiterOptions) {
		tewo.LogWaitAttempts = true
	})
	_, err = waiter.WaitForOutput(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: output.TableDescription.TableName,
	}, time.Second*5)
	return *output.TableDescription.TableName, err
}

func (l *LocalDynamoServer) CreateLocalClient() (*dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRetryMaxAttempts(10),
		config.WithRegion("us-east-1"),
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: fmt.Sprintf("http://localhost:%d", l.Port)}, nil
			})),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     "fake",
				SecretAccessKey: "fake",
				SessionToken:    "fake",
			}}),
	)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg), nil
}

type LocalDynamoServer struct {
	Process *os.Process
	Port    int
}

func moduleRoot() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, true
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "", false
		}
		wd = parent
	}
}

// localJar looks for DynamoDBLocal.jar under DYNAMODB_LOCAL_DIR, falling
// back to the dynamodb directory at the module root.
func localJar() (string, bool) {
	dir := os.Getenv("DYNAMODB_LOCAL_DIR")
	if dir == "" {
		root, ok := moduleRoot()
		if !ok {
			return "", false
		}
		dir = filepath.Join(root, "dynamodb")
	}
	if _, err := os.Stat(filepath.Join(dir, "DynamoDBLocal.jar")); err != nil {
		return "", false
	}
	return dir, true
}

func waitForPort(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), 100*time.Millisecond)
		if err == nil {
			return conn.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("DynamoDB Local did not listen on %d within %s", port, timeout)
}

// StartLocalServer runs DynamoDB Local in memory for the test, skipping the
// test when java or the jar is unavailable.
func StartLocalServer(port int, t *testing.T) *LocalDynamoServer {
	t.Helper()
	dir, ok := localJar()
	if !ok {
		t.Skip("DynamoDBLocal.jar not found; set DYNAMODB_LOCAL_DIR to run")
	}
	if _, err := exec.LookPath("java"); err != nil {
		t.Skip("java not found on PATH")
	}
	cmd := exec.Command(
		"java", fmt.Sprintf("-Djava.library.path=%s", filepath.Join(dir, "DynamoDBLocal_lib")),
		"-jar", filepath.Join(dir, "DynamoDBLocal.jar"),
		"-port", strconv.Itoa(port),
		"-inMemory",
	)
	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start local DDB server: %s", err)
	}
	t.Cleanup(func() {
		if err := cmd.Process.Kill(); err != nil {
			t.Errorf("Failed to terminate local DDB server: %s", err)
		}
		_ = cmd.Wait()
	})
	if err := waitForPort(port, 10*time.Second); err != nil {
		t.Fatal(err)
	}
	return &LocalDynamoServer{Port: port, Process: cmd.Process}
}
