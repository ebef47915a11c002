package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"

	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/auth"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/backend"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/config"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/flow"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/handlers"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/metrics"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/router"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/store/dynamo"
	"github.com/Charbel-Francis/SALEAF-FRONTVIEW-sub001/internal/utils"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AwsRegion))
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}

	metrics.Register()

	logger := utils.NewLogger()
	ddb := dynamodb.NewFromConfig(awsCfg)
	store := dynamo.New(ddb, cfg.DynamoTableName)
	recorder := dynamo.NewOutcomeRecorder(store)
	backendClient := backend.New(cfg, logger)

	manager := flow.NewManager(backendClient, recorder, flow.ManagerConfig{
		InactivityTimeout: cfg.InactivityTimeout,
		SweepInterval:     cfg.SweepInterval,
		OutcomeCountdown:  cfg.OutcomeCountdown,
	}, logger)

	authPort := auth.NewJWT(cfg.JWTSecret)
	h := handlers.NewHandler(manager, backendClient, backendClient, authPort, logger)
	muxRouter := router.New(h)

	adapter := httpadapter.NewV2(muxRouter)
	lambda.Start(adapter.ProxyWithContext)
}
