package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/joho/godotenv"

	"personal-website/internal/config"
)

// デプロイ可能な環境
var environments = []string{"test", "staging", "production"}

const productionEnvironment = "production"

type WebsiteStackProps struct {
	awscdk.StackProps
	Environment string
	// 記事の保存先 (dynamodb または s3)
	StoreBackend string
	ListLimit    int
	SentryDSN    string
	// 事前にビルドした Lambda アセット (zip またはディレクトリ)
	ReadCodePath  string
	WriteCodePath string
}

func NewWebsiteStack(scope constructs.Construct, id string, props *WebsiteStackProps) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)

	fnEnv := map[string]*string{
		"BLOG_ENVIRONMENT":   jsii.String(props.Environment),
		"BLOG_STORE_BACKEND": jsii.String(props.StoreBackend),
		"BLOG_LIST_LIMIT":    jsii.String(strconv.Itoa(props.ListLimit)),
	}
	if props.SentryDSN != "" {
		fnEnv["BLOG_SENTRY_DSN"] = jsii.String(props.SentryDSN)
	}

	// Lambda: 読み取りと書き込みを別関数にする
	readFn := newFunction(stack, "ReadBlogFunction", props.ReadCodePath, fnEnv)
	writeFn := newFunction(stack, "CreateBlogFunction", props.WriteCodePath, fnEnv)

	var storeName *string
	switch props.StoreBackend {
	case config.BackendS3:
		// S3: 記事をオブジェクトとして格納
		bucket := awss3.NewBucket(stack, jsii.String("BlogPostsBucket"), &awss3.BucketProps{
			BlockPublicAccess: awss3.BlockPublicAccess_BLOCK_ALL(),
			Encryption:        awss3.BucketEncryption_S3_MANAGED,
			RemovalPolicy:     removalPolicy(props.Environment),
		})
		bucket.GrantRead(readFn, nil)
		bucket.GrantReadWrite(writeFn, nil)
		for _, fn := range []awslambda.Function{readFn, writeFn} {
			fn.AddEnvironment(jsii.String("BLOG_POSTS_BUCKET"), bucket.BucketName(), nil)
		}
		storeName = bucket.BucketName()
	default:
		table := postsTable(stack, props.Environment)
		table.GrantReadData(readFn)
		table.GrantReadWriteData(writeFn)
		for _, fn := range []awslambda.Function{readFn, writeFn} {
			fn.AddEnvironment(jsii.String("BLOG_TABLE_NAME"), table.TableName(), nil)
		}
		storeName = table.TableName()
	}

	// API Gateway: /, /posts, /posts/{postId}
	api := awsapigateway.NewRestApi(stack, jsii.String("BlogApi"), &awsapigateway.RestApiProps{
		RestApiName: jsii.String(fmt.Sprintf("BlogApi-%s", props.Environment)),
		DeployOptions: &awsapigateway.StageOptions{
			StageName: jsii.String(props.Environment),
		},
		DefaultCorsPreflightOptions: &awsapigateway.CorsOptions{
			AllowOrigins: awsapigateway.Cors_ALL_ORIGINS(),
			AllowMethods: jsii.Strings("GET", "HEAD", "POST", "OPTIONS"),
		},
	})
	readIntegration := awsapigateway.NewLambdaIntegration(readFn, nil)
	writeIntegration := awsapigateway.NewLambdaIntegration(writeFn, nil)
	// 書き込みは IAM 署名付きリクエストのみ
	writeOptions := &awsapigateway.MethodOptions{
		AuthorizationType: awsapigateway.AuthorizationType_IAM,
	}

	api.Root().AddMethod(jsii.String("GET"), readIntegration, nil)
	api.Root().AddMethod(jsii.String("POST"), writeIntegration, writeOptions)

	posts := api.Root().AddResource(jsii.String("posts"), nil)
	posts.AddMethod(jsii.String("GET"), readIntegration, nil)
	posts.AddMethod(jsii.String("POST"), writeIntegration, writeOptions)

	post := posts.AddResource(jsii.String("{postId}"), nil)
	post.AddMethod(jsii.String("GET"), readIntegration, nil)

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{
		Value: api.Url(),
	})
	awscdk.NewCfnOutput(stack, jsii.String("PostStore"), &awscdk.CfnOutputProps{
		Value: storeName,
	})

	return stack
}

func newFunction(stack awscdk.Stack, id, codePath string, env map[string]*string) awslambda.Function {
	return awslambda.NewFunction(stack, jsii.String(id), &awslambda.FunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2023(),
		Handler:     jsii.String("bootstrap"),
		Code:        awslambda.Code_FromAsset(jsii.String(codePath), nil),
		Timeout:     awscdk.Duration_Seconds(jsii.Number(10)),
		MemorySize:  jsii.Number(128),
		Environment: &env,
	})
}

// postsTable は本番では既存テーブルを参照し、それ以外の環境では環境ごとのテーブルを作る
func postsTable(stack awscdk.Stack, environment string) awsdynamodb.ITable {
	if environment == productionEnvironment {
		return awsdynamodb.Table_FromTableName(stack, jsii.String("BlogPosts"), jsii.String(config.DefaultTableName))
	}
	return awsdynamodb.NewTable(stack, jsii.String("BlogPosts"), &awsdynamodb.TableProps{
		TableName: jsii.String(fmt.Sprintf("%s-%s", config.DefaultTableName, environment)),
		PartitionKey: &awsdynamodb.Attribute{
			Name: jsii.String("postId"),
			Type: awsdynamodb.AttributeType_STRING,
		},
		BillingMode:   awsdynamodb.BillingMode_PAY_PER_REQUEST,
		RemovalPolicy: removalPolicy(environment),
	})
}

func removalPolicy(environment string) awscdk.RemovalPolicy {
	if environment == productionEnvironment {
		return awscdk.RemovalPolicy_RETAIN
	}
	return awscdk.RemovalPolicy_DESTROY
}

func validateEnvironment(environment string) error {
	if environment == "" {
		return errors.New("an environment must be passed on deploy (-c environment=<name>)")
	}
	if !slices.Contains(environments, environment) {
		return fmt.Errorf("valid environments are %v, got %q", environments, environment)
	}
	return nil
}

// loadEnvFile は .env.<environment> を読み込む (なければ何もしない)
func loadEnvFile(environment string) error {
	path := fmt.Sprintf(".env.%s", environment)
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func stackProps(environment string) (*WebsiteStackProps, error) {
	props := &WebsiteStackProps{
		StackProps:    awscdk.StackProps{Env: env()},
		Environment:   environment,
		StoreBackend:  getenv("BLOG_STORE_BACKEND", config.BackendDynamoDB),
		ListLimit:     config.DefaultListLimit,
		SentryDSN:     os.Getenv("BLOG_SENTRY_DSN"),
		ReadCodePath:  getenv("READ_CODE_PATH", "dist/lambda/read.zip"),
		WriteCodePath: getenv("WRITE_CODE_PATH", "dist/lambda/write.zip"),
	}
	if props.StoreBackend != config.BackendDynamoDB && props.StoreBackend != config.BackendS3 {
		return nil, fmt.Errorf("unsupported store backend for deployment: %q", props.StoreBackend)
	}
	if v := os.Getenv("BLOG_LIST_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > config.MaxListLimit {
			return nil, fmt.Errorf("invalid BLOG_LIST_LIMIT %q", v)
		}
		props.ListLimit = n
	}
	return props, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	defer jsii.Close()

	app := awscdk.NewApp(nil)

	environment, _ := app.Node().TryGetContext(jsii.String("environment")).(string)
	if err := validateEnvironment(environment); err != nil {
		panic(err)
	}
	if err := loadEnvFile(environment); err != nil {
		panic(err)
	}
	props, err := stackProps(environment)
	if err != nil {
		panic(err)
	}

	NewWebsiteStack(app, fmt.Sprintf("PersonalWebsite-%s", environment), props)

	app.Synth(nil)
}

// env はデプロイ先のアカウント・リージョン (.env.<environment> または CLI の設定から)
func env() *awscdk.Environment {
	account, region := os.Getenv("CDK_DEFAULT_ACCOUNT"), os.Getenv("CDK_DEFAULT_REGION")
	if account == "" && region == "" {
		return nil
	}
	e := &awscdk.Environment{}
	if account != "" {
		e.Account = jsii.String(account)
	}
	if region != "" {
		e.Region = jsii.String(region)
	}
	return e
}
