package load

import (
	"context"
	"fmt"
	"time"

	"github.com/LilVoxy/aid_analytics/ETL/models"
	"github.com/LilVoxy/aid_analytics/ETL/utils"
)

// LoadManager отвечает за управление фазой загрузки во все настроенные хранилища
type LoadManager struct {
	logger  *utils.ETLLogger
	loaders []Loader
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(logger *utils.ETLLogger, loaders ...Loader) *LoadManager {
	return &LoadManager{
		logger:  logger,
		loaders: loaders,
	}
}

// Load выполняет фазу загрузки ETL-процесса.
// Принимает хранилище, прошедшее проверку целостности.
func (m *LoadManager) Load(ctx context.Context, w *models.Warehouse) error {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Загрузка данных)")

	for _, loader := range m.loaders {
		m.logger.Info("Загрузка в хранилище %s...", loader.Name())
		if err := loader.Load(ctx, w); err != nil {
			m.logger.Error("Ошибка при загрузке в %s: %v", loader.Name(), err)
			return fmt.Errorf("ошибка при загрузке в %s: %w", loader.Name(), err)
		}
	}

	m.logger.Info("Фаза Load завершена. Длительность: %v", time.Since(startTime))
	return nil
}
