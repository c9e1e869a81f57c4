package main

import (
	"context"
	"fmt"
	"time"

	"goldops-core/internal/event"
	"goldops-core/internal/handler"
	"goldops-core/internal/model"
	"goldops-core/internal/server"
	"goldops-core/internal/service"
	"goldops-core/internal/service/mq"

	"goldops-core/pkg/cache"
	"goldops-core/pkg/config"
	"goldops-core/pkg/crypto_util"
	"goldops-core/pkg/database"
	"goldops-core/pkg/logger"
	"goldops-core/pkg/utils/lock"
	"goldops-core/pkg/validator"

	"go.uber.org/zap"

	_ "goldops-core/docs/swagger"
)

// @title GoldOps Core API
// @version 1.0
// @description 金币商户运营平台核心服务 (派单/转让/结算)

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 初始化 Validator
	validator.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 构造 DSN
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Shanghai",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)

	// 3. 连接数据库
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 4. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 表结构迁移
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		logger.Fatal("表结构迁移失败", zap.Error(err))
	}

	// 6. 机器登录密码加密密钥
	sealKey, err := crypto_util.DeriveSealKey(config.Global.Business.SecretKey)
	if err != nil {
		logger.Fatal("派生加密密钥失败", zap.Error(err))
	}

	// 7. 多级缓存 (L1: Memory, L2: Redis)，均价查询走这里
	localCache := cache.NewMemoryCache(1*time.Minute, 5*time.Minute)
	redisCache := cache.NewRedisCache(rdb)
	multiCache := cache.NewMultiLevelCache(localCache, redisCache)

	// 8. 消息队列
	mqType := config.Global.Redis.MQType
	var producer mq.Producer
	var consumer mq.Consumer

	if mqType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		kafkaBrokers := config.Global.Kafka.Brokers
		producer = mq.NewKafkaProducer(kafkaBrokers, "goldops_events")
		consumer = mq.NewKafkaConsumer(kafkaBrokers, "goldops_audit_group")
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb)
		consumer = mq.NewRedisConsumer(rdb, "goldops_audit", "audit-0")
	}

	// 9. 组装业务服务 (显式依赖注入，不用包级单例)
	staffSvc := service.NewStaffService(db)
	friendSvc := service.NewFriendService(db)
	costSvc := service.NewCostService(db, multiCache)
	windowSvc := service.NewWindowService(db, config.Global.Business.MaxWindowsPerStaff)
	machineSvc := service.NewMachineService(db, sealKey)
	orderSvc := service.NewOrderService(db, staffSvc)
	settlementSvc := service.NewSettlementService(db, costSvc,
		config.Global.Business.EmployeeCostRate,
		config.Global.Business.InitialCapital)
	transferSvc := service.NewTransferService(db, costSvc, friendSvc, lock.NewRedisLock(rdb))

	// 10. Outbox 消息中继
	relayService := service.NewRelayService(db, producer)
	go relayService.Start(context.Background())

	// 11. 审计消费者: 订阅订单完成事件落日志，方便排查纠纷
	go func() {
		err := consumer.Subscribe(context.Background(), event.TopicOrderCompleted, func(msg *mq.Message) error {
			logger.Info("订单完成事件", zap.ByteString("payload", msg.Payload))
			return nil
		})
		if err != nil {
			logger.Error("审计消费者退出", zap.Error(err))
		}
	}()

	// 12. 定时任务: 每晚物化日结算
	cronService := service.NewCronService(rdb, settlementSvc)
	cronService.Start()
	defer cronService.Stop()

	// 13. HTTP Router
	r := server.NewHTTPRouter(server.Handlers{
		Order:    handler.NewOrderHandler(orderSvc),
		Transfer: handler.NewTransferHandler(transferSvc),
		Window:   handler.NewWindowHandler(windowSvc, machineSvc),
		Stats:    handler.NewStatsHandler(costSvc, settlementSvc),
	})

	// 14. 启动应用 (阻塞)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r)
	app.Run()

	// 15. 退出后资源清理
	logger.Info("正在关闭数据库连接...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("系统已退出")
}
